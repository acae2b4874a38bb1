// Package supabase implements auth.Client against a Supabase GoTrue
// endpoint. The session is held in memory for the life of the client.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"langscope-auth/internal/auth"
	"langscope-auth/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// TokenVerifier checks an access token before it is accepted.
// *oidc.IDTokenVerifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*oidc.IDToken, error)
}

// Config points the client at a Supabase project.
type Config struct {
	URL     string
	AnonKey string

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	// Verifier, when set, must accept every access token returned by
	// the token endpoint.
	Verifier TokenVerifier
}

// Client talks to GoTrue and keeps the signed-in session in memory.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	verifier   TokenVerifier
	listeners  *auth.Registry

	mu      sync.RWMutex
	token   *oauth2.Token
	session *auth.Session
}

var _ auth.Client = (*Client)(nil)

// New validates cfg and returns a signed-out client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, errors.New("supabase: url and anon key are required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey:    cfg.AnonKey,
		httpClient: httpClient,
		verifier:   cfg.Verifier,
		listeners:  auth.NewRegistry(),
	}, nil
}

// NewVerifier builds a verifier for the project's access tokens using
// the JWKS published by GoTrue.
func NewVerifier(ctx context.Context, projectURL string) *oidc.IDTokenVerifier {
	issuer := strings.TrimRight(projectURL, "/") + "/auth/v1"
	keySet := oidc.NewRemoteKeySet(ctx, issuer+"/.well-known/jwks.json")

	return oidc.NewVerifier(issuer, keySet, &oidc.Config{
		SkipClientIDCheck:    true,
		SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
	})
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userResponse) toUser() auth.User {
	return auth.User{ID: u.ID, Email: u.Email, Role: u.Role}
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

func (t tokenResponse) expiry() time.Time {
	switch {
	case t.ExpiresAt > 0:
		return time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// errorResponse covers both the legacy OAuth-style error body and the
// newer code/msg body.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (c *Client) current() *auth.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// GetSession returns a copy of the held session, or nil when signed out.
func (c *Client) GetSession(ctx context.Context) (*auth.Session, error) {
	return c.current(), nil
}

// GetUser fetches the user behind the held access token. It returns nil
// without a network call when signed out.
func (c *Client) GetUser(ctx context.Context) (*auth.User, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token == nil {
		return nil, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.bearerClient(token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: get user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var u userResponse
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("supabase: decode user: %w", err)
	}

	user := u.toUser()
	return &user, nil
}

// OnAuthStateChange registers fn and calls it once with the current state.
func (c *Client) OnAuthStateChange(fn auth.Listener) *auth.Subscription {
	return c.listeners.Subscribe(fn, c.current)
}

// SignInWithPassword exchanges credentials for a session and notifies
// listeners with SIGNED_IN. Rejected credentials leave the state untouched.
func (c *Client) SignInWithPassword(ctx context.Context, creds auth.Credentials) (*auth.AuthResponse, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/token?grant_type=password", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("supabase: decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("supabase: token response missing access_token")
	}

	if c.verifier != nil {
		if _, err := c.verifier.Verify(ctx, tr.AccessToken); err != nil {
			logger.Error("supabase access token verification failed", map[string]any{
				"error": err.Error(),
			})
			return nil, fmt.Errorf("supabase: verify access token: %w", err)
		}
	}

	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
		Expiry:       tr.expiry(),
	}

	session := auth.Session{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		ExpiresAt:   token.Expiry,
		User:        tr.User.toUser(),
	}

	s := session
	c.listeners.Transition(func() (auth.Event, *auth.Session) {
		c.mu.Lock()
		c.token = token
		c.session = &session
		c.mu.Unlock()
		return auth.EventSignedIn, &s
	})

	u := s.User
	return &auth.AuthResponse{User: &u, Session: &s}, nil
}

// SignOut clears the local session and notifies listeners even when
// the logout call fails; the failure is still returned.
func (c *Client) SignOut(ctx context.Context) error {
	var token *oauth2.Token
	c.listeners.Transition(func() (auth.Event, *auth.Session) {
		c.mu.Lock()
		token = c.token
		c.token = nil
		c.session = nil
		c.mu.Unlock()
		return auth.EventSignedOut, nil
	})

	if token == nil {
		return nil
	}
	return c.logout(ctx, token)
}

func (c *Client) logout(ctx context.Context, token *oauth2.Token) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}

	resp, err := c.bearerClient(token).Do(req)
	if err != nil {
		return fmt.Errorf("supabase: logout: %w", err)
	}
	defer resp.Body.Close()

	// an already-expired token means the server session is gone anyway
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("supabase: build request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// bearerClient wraps the configured HTTP client so requests carry the
// session's access token. The base client's timeout still applies.
func (c *Client) bearerClient(token *oauth2.Token) *http.Client {
	t := *token
	t.TokenType = "Bearer"
	// StaticTokenSource never refreshes, so a zero expiry keeps it valid
	t.Expiry = time.Time{}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&t),
			Base:   c.httpClient.Transport,
		},
		Timeout:       c.httpClient.Timeout,
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
	}
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var er errorResponse
	_ = json.Unmarshal(raw, &er)

	if resp.StatusCode == http.StatusBadRequest &&
		(er.Error == "invalid_grant" || er.ErrorCode == "invalid_credentials") {
		return auth.ErrInvalidCredentials
	}

	msg := firstNonEmpty(er.ErrorDescription, er.Msg, er.Message, er.Error)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &auth.Error{Message: msg, Status: resp.StatusCode}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
