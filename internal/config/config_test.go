package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/Library/Managed Installs", cfg.Paths.ManagedInstallsDir)
	assert.Equal(t, "/tmp", cfg.Status.SocketDir)
	assert.Equal(t, 30*time.Second, cfg.Status.AcceptTimeout)
	assert.Equal(t, 60, cfg.GUI.CacheAgeSeconds)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
paths:
  managed_installs_dir: /var/lib/managed-installs
status:
  socket_dir: /run/msu
  accept_timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/managed-installs", cfg.Paths.ManagedInstallsDir)
	assert.Equal(t, "/run/msu", cfg.Status.SocketDir)
	assert.Equal(t, 10*time.Second, cfg.Status.AcceptTimeout)
	// Untouched sections keep their defaults.
	assert.Equal(t, 60, cfg.GUI.CacheAgeSeconds)
	assert.Equal(t, "/usr/local/munki/managedsoftwareupdate", cfg.Paths.WorkerBinary)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("status: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{Paths: PathsConfig{ManagedInstallsDir: "/mi"}}

	assert.Equal(t, "/mi/ManagedInstalls.yaml", cfg.PrefsPath())
	assert.Equal(t, "/mi/InstallInfo.yaml", cfg.InstallInfoPath())
	assert.Equal(t, "/mi/manifests/SelfServeManifest.yaml", cfg.SelfServeManifestPath())
	assert.Equal(t, "/mi/forced_logout_warning.yaml", cfg.LogoutWarningPath())
}
