package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"
)

var (
	ErrMissingID = errors.New("session: missing session_id or user_id")
	ErrExpired   = errors.New("session: expires_at must be in the future")
)

// Session is the server-side record behind the session cookie. It
// carries the identity the auth client reported at sign-in and a
// fingerprint of the backend access token, never the token itself.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenHash string    `json:"token_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Holds reports whether accessToken is the token this session was
// created with.
func (s Session) Holds(accessToken string) bool {
	if s.TokenHash == "" || accessToken == "" {
		return false
	}
	want := Fingerprint(accessToken)
	return subtle.ConstantTimeCompare([]byte(s.TokenHash), []byte(want)) == 1
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) for unknown sessions.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}

func validate(s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return ErrMissingID
	}
	return nil
}
