package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
database:
  host: db.internal
  name: medrec_test
session:
  secret: 0123456789abcdef0123456789abcdef
  ttl: 12h
redis:
  url: redis://localhost:6379/0
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 14*24*time.Hour, cfg.Session.RememberTTL)
	assert.Equal(t, "medrec_session", cfg.Session.CookieName)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 365, cfg.Audit.RetentionDays)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MEDREC_DATABASE_HOST", "override.internal")
	t.Setenv("MEDREC_SESSION_REMEMBER_TTL", "72h")
	t.Setenv("MEDREC_RATE_LIMIT_BURST", "20")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "medrec_test", cfg.Database.Name)
	assert.Equal(t, 72*time.Hour, cfg.Session.RememberTTL)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "server:\n  port: 8080\n"))
	assert.Error(t, err)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
