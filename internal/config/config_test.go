package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-donor-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "Donor Portal", cfg.GetAppName())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "info", cfg.GetLogLevel())
	require.Equal(t, "http://localhost:5000", cfg.GetAPIBaseURL())
	require.Equal(t, 10*time.Second, cfg.GetAPITimeout())
	require.Empty(t, cfg.GetRedisURL())
	require.Empty(t, cfg.GetDataFolder())
	require.Equal(t, 720*time.Hour, cfg.GetStorageKeyTTL())
	require.Empty(t, cfg.GetAllowedOrigins())
	require.Equal(t, 7*24*time.Hour, cfg.GetShortTokenTTL())
	require.Equal(t, 30*24*time.Hour, cfg.GetRememberTokenTTL())
	require.Equal(t, "portal_browser_id", cfg.GetBrowserCookieName())
}

func TestParseOverrides(t *testing.T) {
	cfg, err := config.Parse(map[string]string{
		"PORT":            ":9000",
		"ENV":             "prod",
		"API_BASE_URL":    "https://api.example.com/",
		"API_TIMEOUT":     "3s",
		"REDIS_URL":       "redis://localhost:6379/1",
		"FOLDER":          "/var/lib/portal",
		"ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,,",
	})
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.GetPort())
	require.Equal(t, "PROD", cfg.GetEnv())
	require.Equal(t, "https://api.example.com", cfg.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, cfg.GetAPITimeout())
	require.Equal(t, "redis://localhost:6379/1", cfg.GetRedisURL())
	require.Equal(t, "/var/lib/portal", cfg.GetDataFolder())

	origins := cfg.GetAllowedOrigins()
	require.Len(t, origins, 2)
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://c.example.com"))
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := config.Parse(map[string]string{"API_TIMEOUT": "soon"})
	require.Error(t, err)
}
