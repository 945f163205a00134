package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HABITAT_STORE_PATH", dir)

	cfg, err := NewStoreConfig()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.StorePath())
	assert.Equal(t, filepath.Join(dir, "library.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join(dir, "apps"), cfg.InstallRoot())
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.EmitThrottle())
	assert.Equal(t, "info", cfg.LogLevel())
	assert.Empty(t, cfg.ElevationCommand())
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HABITAT_STORE_PATH", dir)

	yml := []byte(`
connect_timeout: 5s
emit_throttle: 250ms
elevation_command: ["pkexec"]
worker_path: /opt/store/store-worker
log_level: debug
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store.yml"), yml, 0o600))

	cfg, err := NewStoreConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.EmitThrottle())
	assert.Equal(t, []string{"pkexec"}, cfg.ElevationCommand())
	assert.Equal(t, "/opt/store/store-worker", cfg.WorkerPath())
	assert.Equal(t, "debug", cfg.LogLevel())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("ipc_dir: /from/file\n"), 0o600))
	t.Setenv("HABITAT_STORE_IPC_DIR", "/from/env")

	cfg, err := NewStoreConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.IPCDir())
}

func TestElevationFromEnv(t *testing.T) {
	t.Setenv("HABITAT_STORE_PATH", t.TempDir())
	t.Setenv("HABITAT_STORE_ELEVATION", "sudo -n")

	cfg, err := NewStoreConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo", "-n"}, cfg.ElevationCommand())
}
