package handler

import (
	"errors"
	"net/http"
	"time"

	"langscope-auth/internal/auth"
	"langscope-auth/internal/logger"
	"langscope-auth/internal/middleware"
	"langscope-auth/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	client       auth.Client
	sessionStore session.Store
	sessionTTL   time.Duration
	cookie       session.CookieOptions
}

func NewHandler(
	client auth.Client,
	sessionStore session.Store,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		client:       client,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
		cookie:       session.DefaultCookieOptions,
	}
}

// RegisterRoutes mounts the auth routes. Everything except login runs
// behind requireAuth and only ever reveals the caller's own session.
func (h *Handler) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	r.POST("/auth/login", h.Login)

	g := r.Group("/auth", requireAuth)
	g.POST("/logout", h.Logout)
	g.GET("/session", h.Session)
	g.GET("/user", h.User)
	g.GET("/events", h.Events)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resp, err := h.client.SignInWithPassword(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	sess, err := session.New(resp.User.ID, resp.User.Email, resp.User.Role, h.sessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}
	sess.TokenHash = session.Fingerprint(resp.Session.AccessToken)

	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		logger.Error("failed to persist session", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	session.SetCookie(c.Writer, sess, h.cookie)

	logger.Info("login succeeded", map[string]any{
		"user_id": resp.User.ID,
		"ip":      c.ClientIP(),
	})

	c.JSON(http.StatusOK, resp)
}

// Logout ends the caller's server session. The backend is signed out
// only when the client still holds the caller's own session.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := middleware.SessionFromContext(ctx)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// best-effort; the cookie is cleared regardless
	_ = h.sessionStore.Delete(ctx, caller.SessionID)

	if s, err := h.client.GetSession(ctx); err == nil && owns(caller, s) {
		if err := h.client.SignOut(ctx); err != nil {
			logger.Warn("backend sign-out failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.ClearCookie(c.Writer, h.cookie)

	c.Status(http.StatusNoContent)
}

func (h *Handler) Session(c *gin.Context) {
	caller, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	s, err := h.client.GetSession(c.Request.Context())
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	if !owns(caller, s) {
		s = nil
	}
	c.JSON(http.StatusOK, gin.H{"session": s})
}

func (h *Handler) User(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := middleware.SessionFromContext(ctx)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	s, err := h.client.GetSession(ctx)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	if !owns(caller, s) {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	u, err := h.client.GetUser(ctx)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// owns reports whether the client session s belongs to the caller's
// server session.
func owns(caller *session.Session, s *auth.Session) bool {
	return caller != nil && s != nil &&
		caller.UserID == s.User.ID &&
		caller.Holds(s.AccessToken)
}

// Me returns the identity stored in the caller's server session.
// It must sit behind middleware.GinRequireAuth.
func (h *Handler) Me(c *gin.Context) {
	s, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": s.UserID,
		"email":   s.Email,
		"role":    s.Role,
	})
}

func (h *Handler) writeAuthError(c *gin.Context, err error) {
	if auth.IsInvalidCredentials(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) && authErr.Status >= 400 && authErr.Status < 500 {
		c.JSON(authErr.Status, gin.H{"error": authErr.Message})
		return
	}

	logger.Error("auth backend failure", map[string]any{
		"path":  c.FullPath(),
		"error": err.Error(),
	})
	c.JSON(http.StatusBadGateway, gin.H{"error": "auth backend unavailable"})
}
