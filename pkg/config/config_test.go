package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/api/v1", cfg.APIPrefix)

	require.Equal(t, "https://oauth2.googleapis.com/token", cfg.OAuth.TokenURL)
	require.Equal(t, 24*time.Hour, cfg.OAuth.AccessCookieTTL)
	require.Equal(t, 720*time.Hour, cfg.OAuth.RefreshCookieTTL)

	require.Equal(t, "AI-TakeOff", cfg.Drive.FolderName)
	require.Equal(t, "http://127.0.0.1:5000", cfg.Analyzer.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.Analyzer.Timeout)

	require.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	require.Equal(t, 4000, cfg.OpenAI.MaxTokens)
	require.InDelta(t, 0.3, cfg.OpenAI.Temperature, 0.001)

	require.Equal(t, TakeoffBackendRemote, cfg.Takeoffs.Backend)
	require.Equal(t, "https://ai-takeoff.ttfconstruction.com", cfg.Takeoffs.RemoteURL)
	require.Equal(t, 20, cfg.Takeoffs.DefaultLimit)

	require.Equal(t, 24*time.Hour, cfg.Exports.SignedURLTTL)
	require.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TAKEOFFS_BACKEND", "POSTGRES")
	t.Setenv("ACCESS_COOKIE_TTL", "1h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, TakeoffBackendPostgres, cfg.Takeoffs.Backend)
	require.Equal(t, time.Hour, cfg.OAuth.AccessCookieTTL)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestParseDuration(t *testing.T) {
	require.Equal(t, time.Minute, parseDuration("1m", time.Hour))
	require.Equal(t, time.Hour, parseDuration("", time.Hour))
	require.Equal(t, time.Hour, parseDuration("bogus", time.Hour))
}

func TestSplitAndTrim(t *testing.T) {
	require.Nil(t, splitAndTrim(""))
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,"))
}
