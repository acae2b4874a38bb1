package app

import (
	"context"

	"langscope-auth/internal/auth"
	"langscope-auth/internal/auth/mock"
	"langscope-auth/internal/auth/supabase"
	"langscope-auth/internal/config"
	"langscope-auth/internal/logger"
)

const (
	ModeMock     = "mock"
	ModeSupabase = "supabase"
)

// newAuthClient picks the auth.Client implementation from cfg.MockMode.
func newAuthClient(ctx context.Context, cfg config.Config) (auth.Client, string, error) {
	if cfg.MockMode {
		c, err := mock.New(mock.Config{
			Email:    cfg.MockEmail,
			Password: cfg.MockPassword,
		})
		if err != nil {
			return nil, "", err
		}
		return c, ModeMock, nil
	}

	scfg := supabase.Config{
		URL:     cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	}
	if cfg.SupabaseVerifyJWT {
		scfg.Verifier = supabase.NewVerifier(ctx, cfg.SupabaseURL)
	}

	c, err := supabase.New(scfg)
	if err != nil {
		return nil, "", err
	}

	logger.Info("supabase auth client ready", map[string]any{
		"url":        cfg.SupabaseURL,
		"verify_jwt": cfg.SupabaseVerifyJWT,
	})

	return c, ModeSupabase, nil
}
