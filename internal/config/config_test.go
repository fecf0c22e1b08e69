package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
app:
  mode: production
server:
  port: 9090
database:
  driver: sqlite
  dsn: "file::memory:"
rate_limit:
  enabled: true
  window_seconds: 60
  max_requests: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, int64(5), cfg.RateLimit.MaxRequests)

	// 文件未设置的字段保留默认值
	assert.Equal(t, 8, cfg.ShortCode.Length)
	assert.Equal(t, 10, cfg.ShortCode.MaxAttempts)
	assert.Equal(t, "linkhub.clicks", cfg.Events.ClickSubject)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "42")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(42), cfg.RateLimit.MaxRequests)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
