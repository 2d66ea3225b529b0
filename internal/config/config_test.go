package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Millisecond, cfg.Client.ErrorClearDelay)
	assert.Equal(t, "calendar", cfg.Database.Schema)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := `
server:
  port: 9000
auth:
  secret: file-secret
db:
  name: other
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.Auth.Secret)
	assert.Equal(t, "other", cfg.Database.Name)
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  secret: file-secret\n"), 0600))
	t.Setenv("CALENDAR_AUTH_SECRET", "env-secret")
	t.Setenv("CALENDAR_CLIENT_BASEURL", "http://example.com/api")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	assert.Equal(t, "http://example.com/api", cfg.Client.BaseUrl)
}
