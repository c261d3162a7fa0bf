package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dom-engine/internal/infrastructure/env"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(&env.EnvService{})
	require.NoError(t, err)

	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, int64(50<<20), cfg.HTTP.MaxBodyBytes)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
browser:
  max_sessions: 2
  viewport:
    width: 800
    height: 600
  navigation_timeout: 5s
screenshot:
  format: jpeg
cache:
  enabled: false
`), 0o600))

	t.Setenv(FileEnv, path)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("VIEWPORT_HEIGHT", "700")
	t.Setenv("OPERATION_TIMEOUT", "20")

	cfg, err := Load(&env.EnvService{})
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, int64(2), cfg.Browser.MaxSessions)
	assert.Equal(t, 800, cfg.Browser.Viewport.Width)
	assert.Equal(t, 700, cfg.Browser.Viewport.Height)
	assert.Equal(t, 5*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 20*time.Second, cfg.Engine.OperationTimeout)
	assert.Equal(t, "jpeg", cfg.Screenshot.Format)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(&env.EnvService{})
	assert.Error(t, err)

	t.Setenv(FileEnv, "")
	t.Setenv("SCREENSHOT_FORMAT", "gif")
	_, err = Load(&env.EnvService{})
	assert.ErrorContains(t, err, "screenshot format")
}
