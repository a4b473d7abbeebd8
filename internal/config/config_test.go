package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, `
server:
  port: 9090
database:
  url: postgres://localhost/crm
telegram:
  reminder_interval: 5m
contracts:
  default_vat_rate: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/crm", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Telegram.ReminderInterval)
	assert.Equal(t, 5.0, cfg.Contracts.DefaultVATRate)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestLoad_ProductionNeedsJWTSecret(t *testing.T) {
	path := writeConfig(t, "env: production\ndatabase:\n  url: postgres://file\n")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")

	t.Setenv("JWT_SECRET", "prod-key")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod-key", cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  url: postgres://file\n")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("PORT", "7000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingFileNeedsDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://env")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}
