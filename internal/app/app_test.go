package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"langscope-auth/internal/auth/mock"
	"langscope-auth/internal/auth/supabase"
	"langscope-auth/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func testConfig(mockMode bool) config.Config {
	return config.Config{
		AppPort:         "0",
		MockMode:        mockMode,
		MockEmail:       mock.DevEmail,
		MockPassword:    mock.DevPassword,
		SupabaseURL:     config.DefaultSupabaseURL,
		SupabaseAnonKey: config.DefaultSupabaseAnonKey,
		SessionTTL:      time.Hour,
	}
}

func TestNewAuthClient_SelectsImplementation(t *testing.T) {
	ctx := context.Background()

	c, mode, err := newAuthClient(ctx, testConfig(true))
	require.NoError(t, err)
	require.Equal(t, ModeMock, mode)
	require.IsType(t, &mock.Client{}, c)

	c, mode, err = newAuthClient(ctx, testConfig(false))
	require.NoError(t, err)
	require.Equal(t, ModeSupabase, mode)
	require.IsType(t, &supabase.Client{}, c)
}

func TestNew_MockModeWithoutInfra(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := New(context.Background(), testConfig(true))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","mode":"mock"}`, rec.Body.String())

	for _, path := range []string{"/auth/session", "/auth/user", "/api/me"} {
		rec = httptest.NewRecorder()
		a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	require.NoError(t, a.Shutdown(context.Background()))
}
