package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/launchbase/accountd/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/accountd")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.True(t, cfg.UsingDefaultSecret())
	require.False(t, cfg.IsProduction())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/accountd")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "strong-secret")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "strong-secret", cfg.JWTSecret)
	require.False(t, cfg.UsingDefaultSecret())
	require.True(t, cfg.IsProduction())
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/accountd")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_RPM", "120")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.TokenTTL)
	require.Equal(t, 120, cfg.RateLimitRPM)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}
