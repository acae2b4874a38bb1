package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"langscope-auth/internal/auth/mock"
	"langscope-auth/internal/logger"

	"github.com/spf13/viper"
)

const (
	DefaultSupabaseURL     = "https://placeholder.supabase.co"
	DefaultSupabaseAnonKey = "placeholder-anon-key"
)

type Config struct {
	AppPort string

	// MockMode swaps the Supabase client for the in-memory mock.
	MockMode     bool
	MockEmail    string
	MockPassword string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseVerifyJWT bool

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	SessionTTL time.Duration
}

// Load reads configuration from the environment. Missing Supabase
// settings fall back to placeholders with a warning; only malformed
// values are an error.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("AUTH_MOCK_MODE", "false")
	v.SetDefault("AUTH_MOCK_EMAIL", mock.DevEmail)
	v.SetDefault("AUTH_MOCK_PASSWORD", mock.DevPassword)
	v.SetDefault("SUPABASE_VERIFY_JWT", "false")
	v.SetDefault("SESSION_TTL", "24h")

	mockMode, err := parseBool(v, "AUTH_MOCK_MODE")
	if err != nil {
		return Config{}, err
	}

	verifyJWT, err := parseBool(v, "SUPABASE_VERIFY_JWT")
	if err != nil {
		return Config{}, err
	}

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("config: SESSION_TTL must be a positive duration, got %q", v.GetString("SESSION_TTL"))
	}

	cfg := Config{

		AppPort: v.GetString("APP_PORT"),

		MockMode:     mockMode,
		MockEmail:    v.GetString("AUTH_MOCK_EMAIL"),
		MockPassword: v.GetString("AUTH_MOCK_PASSWORD"),

		SupabaseURL:       strings.TrimRight(fallback(v, "SUPABASE_URL", DefaultSupabaseURL), "/"),
		SupabaseAnonKey:   fallback(v, "SUPABASE_ANON_KEY", DefaultSupabaseAnonKey),
		SupabaseVerifyJWT: verifyJWT,

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		DatabaseDSN: v.GetString("DATABASE_DSN"),

		SessionTTL: ttl,
	}

	return cfg, nil
}

// parseBool accepts only the strconv boolean spellings.
func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := strings.TrimSpace(v.GetString(key))
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", key, raw)
	}
	return b, nil
}

func fallback(v *viper.Viper, key, def string) string {
	val := strings.TrimSpace(v.GetString(key))
	if val == "" {
		logger.Warn("missing configuration, using fallback", map[string]any{
			"key":      key,
			"fallback": def,
		})
		return def
	}
	return val
}
