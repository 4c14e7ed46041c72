package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "@cf/meta/llama-3.1-70b-instruct", cfg.Cloudflare.Model)
	assert.Equal(t, 2, cfg.Providers.MaxResults)
	assert.Equal(t, 5*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, 1, cfg.Providers.Brave.RateCalls)
	assert.Equal(t, time.Second, cfg.Providers.Serper.RatePeriod)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 3, cfg.Session.MaxPreviousQueries)
	assert.Equal(t, 5000, cfg.Extractor.MaxChars)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 60, cfg.API.RateLimit)

	assert.Error(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CLOUDFLARE_API_KEY", "token")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acct")
	t.Setenv("PROVIDERS_BRAVE_API_KEY", "brave-key")
	t.Setenv("PROVIDERS_YOUTUBE_RATE_PERIOD", "2s")
	t.Setenv("SESSION_TTL", "1m")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "brave-key", cfg.Providers.Brave.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Providers.YouTube.RatePeriod)
	assert.Equal(t, time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := []byte("server:\n  port: \"9090\"\nproviders:\n  max_results: 4\n  serper:\n    api_key: serper-key\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Providers.MaxResults)
	assert.Equal(t, "serper-key", cfg.Providers.Serper.APIKey)
}
