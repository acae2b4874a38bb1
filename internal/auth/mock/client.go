// Package mock provides an in-memory auth.Client for development builds.
// It accepts exactly one email/password pair and hands out one fixed
// session; nothing is persisted.
package mock

import (
	"context"
	"sync"

	"langscope-auth/internal/auth"
	"langscope-auth/internal/auth/credentials"
	"langscope-auth/internal/logger"
)

// Config sets the one email/password pair the mock accepts. Empty
// fields fall back to DevEmail and DevPassword.
type Config struct {
	Email    string
	Password string

	// HashCost is the bcrypt cost for the stored password hash.
	// Zero selects bcrypt.DefaultCost.
	HashCost int
}

// Client is the mock auth.Client. Construct it once per process and
// share it; the sign-in flag and listeners live on the instance.
type Client struct {
	creds     *credentials.Pair
	session   auth.Session
	listeners *auth.Registry

	mu       sync.RWMutex
	signedIn bool
}

var _ auth.Client = (*Client)(nil)

// New builds the mock and logs a warning that development credentials
// are in effect.
func New(cfg Config) (*Client, error) {
	if cfg.Email == "" {
		cfg.Email = DevEmail
	}
	if cfg.Password == "" {
		cfg.Password = DevPassword
	}

	pair, err := credentials.NewPair(cfg.Email, cfg.Password, cfg.HashCost)
	if err != nil {
		return nil, err
	}

	logger.Warn("mock auth mode active: development credentials in effect", map[string]any{
		"email": cfg.Email,
	})

	return &Client{
		creds: pair,
		session: auth.Session{
			AccessToken: AccessToken,
			TokenType:   "bearer",
			User: auth.User{
				ID:    UserID,
				Email: cfg.Email,
				Role:  UserRole,
			},
		},
		listeners: auth.NewRegistry(),
	}, nil
}

// current returns a copy of the canonical session, or nil.
func (c *Client) current() *auth.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.signedIn {
		return nil
	}
	s := c.session
	return &s
}

// GetSession returns the canonical session while signed in, else nil.
func (c *Client) GetSession(ctx context.Context) (*auth.Session, error) {
	return c.current(), nil
}

// GetUser returns the canonical user while signed in, else nil.
func (c *Client) GetUser(ctx context.Context) (*auth.User, error) {
	s := c.current()
	if s == nil {
		return nil, nil
	}
	return &s.User, nil
}

// OnAuthStateChange registers fn and reports the current state to it
// before returning.
func (c *Client) OnAuthStateChange(fn auth.Listener) *auth.Subscription {
	return c.listeners.Subscribe(fn, c.current)
}

// SignInWithPassword signs in when creds exactly match the configured
// pair and returns ErrInvalidCredentials otherwise, leaving state alone.
func (c *Client) SignInWithPassword(ctx context.Context, creds auth.Credentials) (*auth.AuthResponse, error) {
	if !c.creds.Match(creds.Email, creds.Password) {
		return nil, auth.ErrInvalidCredentials
	}

	s := c.session
	c.listeners.Transition(func() (auth.Event, *auth.Session) {
		c.mu.Lock()
		c.signedIn = true
		c.mu.Unlock()
		return auth.EventSignedIn, &s
	})

	u := s.User
	return &auth.AuthResponse{User: &u, Session: &s}, nil
}

// SignOut always succeeds, even when nobody is signed in.
func (c *Client) SignOut(ctx context.Context) error {
	c.listeners.Transition(func() (auth.Event, *auth.Session) {
		c.mu.Lock()
		c.signedIn = false
		c.mu.Unlock()
		return auth.EventSignedOut, nil
	})
	return nil
}
