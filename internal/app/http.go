package app

import (
	"context"

	"langscope-auth/internal/audit"
	"langscope-auth/internal/auth"
	"langscope-auth/internal/auth/handler"
	"langscope-auth/internal/config"
	"langscope-auth/internal/middleware"
	"langscope-auth/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	client, mode, err := newAuthClient(ctx, cfg)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	var auditSub *auth.Subscription
	if infra.DB != nil {
		auditSub = audit.NewRecorder(infra.DB, mode).Attach(client)
	}

	router := newRouter(client, mode, infra.SessionStore(), cfg)

	return router, func() error {
		auditSub.Unsubscribe()
		return infra.Close()
	}, nil
}

// newRouter wires the HTTP surface around an auth client and a session
// store.
func newRouter(client auth.Client, mode string, store session.Store, cfg config.Config) *gin.Engine {
	// ----------------------------
	// Dependencies
	// ----------------------------

	authHandler := handler.NewHandler(client, store, cfg.SessionTTL)
	requireAuth := middleware.GinRequireAuth(middleware.NewAuthMiddleware(store))

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Auth Routes
	// ----------------------------

	authHandler.RegisterRoutes(router, requireAuth)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "mode": mode})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(requireAuth)

	api.GET("/me", authHandler.Me)

	return router
}
