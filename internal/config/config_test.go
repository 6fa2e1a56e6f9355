package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "app:\n  env: prod\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8787", cfg.App.HTTPAddr)
	assert.Equal(t, 3, cfg.Auth.MaxTraders)
	assert.Equal(t, 4, cfg.Auth.PinMinLen)
	assert.Equal(t, 8, cfg.Auth.PinMaxLen)
	assert.Equal(t, "data/logbook.db", cfg.Database.Path)
	assert.False(t, cfg.Seed.Enabled)
}

func TestLoad_ExplicitValuesSurviveDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  log_level: debug
auth:
  max_traders: 2
database:
  path: /tmp/x.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 2, cfg.Auth.MaxTraders)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, "app:\n  log_level: loud\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "log_level")
}

func TestLoad_RejectsBadPinBounds(t *testing.T) {
	path := writeConfig(t, "auth:\n  pin_min_len: 6\n  pin_max_len: 4\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "pin length")
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteStarter(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8787", cfg.App.HTTPAddr)

	// refuses to overwrite
	assert.Error(t, WriteStarter(path))
}
