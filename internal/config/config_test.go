package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STATUSDECK_DATABASE__URL", "postgres://localhost:5432/statusdeck")
	t.Setenv("STATUSDECK_AUTH__SIGNING_KEY", "test-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "file://migrations", cfg.Database.MigrationsURL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 32, cfg.Realtime.SendBuffer)
	assert.Equal(t, 30*time.Second, cfg.Realtime.PingInterval)
	assert.Equal(t, float64(10), cfg.RateLimit.PublicRPS)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("STATUSDECK_AUTH__SIGNING_KEY", "test-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9000"
database:
  url: postgres://db:5432/statusdeck
  max_open_conns: 25
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "postgres://db:5432/statusdeck", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("STATUSDECK_AUTH__SIGNING_KEY", "test-key")
	t.Setenv("STATUSDECK_SERVER__PORT", "7070")
	t.Setenv("STATUSDECK_LOG__LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9000"
database:
  url: postgres://db:5432/statusdeck
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("STATUSDECK_AUTH__SIGNING_KEY", "test-key")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestLoadMissingSigningKey(t *testing.T) {
	t.Setenv("STATUSDECK_DATABASE__URL", "postgres://localhost:5432/statusdeck")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.signing_key")
}
