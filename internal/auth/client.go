package auth

import "context"

// Client defines the auth operations the application depends on.
// The Supabase client and the in-memory mock both implement it; the
// choice is made once, at construction time.
type Client interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)

	// GetUser returns the current user, or nil when signed out.
	GetUser(ctx context.Context) (*User, error)

	// OnAuthStateChange registers fn and calls it once, synchronously,
	// with the current state before returning.
	OnAuthStateChange(fn Listener) *Subscription

	// SignInWithPassword authenticates with email and password.
	// A credential mismatch is reported as ErrInvalidCredentials.
	SignInWithPassword(ctx context.Context, creds Credentials) (*AuthResponse, error)

	// SignOut ends the current session and notifies listeners.
	SignOut(ctx context.Context) error
}

// CurrentState returns the event and session a new listener should be
// told about immediately.
func CurrentState(s *Session) (Event, *Session) {
	if s == nil {
		return EventInitialSession, nil
	}
	return EventSignedIn, s
}
