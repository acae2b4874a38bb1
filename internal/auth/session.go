package auth

import "time"

// Event names the auth state transition delivered to listeners.
type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
)

// User is the authenticated principal as reported by the backend.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session pairs a bearer token with the user it was issued to.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	User        User      `json:"user"`
}

// Credentials are the inputs to a password sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful sign-in.
type AuthResponse struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}
