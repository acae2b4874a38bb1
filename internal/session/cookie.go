package session

import (
	"net/http"
)

// CookieName uses the __Host- prefix, so the cookie must be Secure,
// host-only and scoped to "/".
const CookieName = "__Host-session"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieOptions are used by the HTTP handlers.
var DefaultCookieOptions = CookieOptions{
	Secure:   true,
	SameSite: http.SameSiteLaxMode,
}

// SetCookie issues the session cookie for s.
func SetCookie(w http.ResponseWriter, s Session, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.SessionID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// IDFromRequest returns the session id carried by the request cookie.
func IDFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
