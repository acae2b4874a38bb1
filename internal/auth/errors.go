package auth

import "errors"

// Error is an auth failure the caller is expected to inspect, carrying
// the backend's human-readable message.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

var ErrInvalidCredentials = &Error{Message: "Invalid login credentials", Status: 400}

// IsInvalidCredentials reports whether err is a credential mismatch.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
