package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths  PathsConfig  `yaml:"paths"`
	Status StatusConfig `yaml:"status"`
	GUI    GUIConfig    `yaml:"gui"`
}

type PathsConfig struct {
	ManagedInstallsDir string `yaml:"managed_installs_dir"`
	WorkerBinary       string `yaml:"worker_binary"`
}

type StatusConfig struct {
	SocketDir string `yaml:"socket_dir"`
	// AcceptTimeout bounds how long the session waits for the worker to
	// connect. It does not apply once a connection is established.
	AcceptTimeout time.Duration `yaml:"accept_timeout"`
}

// UnmarshalYAML accepts accept_timeout as a duration string ("30s") and
// leaves defaults in place for absent keys.
func (s *StatusConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SocketDir     string `yaml:"socket_dir"`
		AcceptTimeout string `yaml:"accept_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.SocketDir != "" {
		s.SocketDir = raw.SocketDir
	}
	if raw.AcceptTimeout != "" {
		d, err := time.ParseDuration(raw.AcceptTimeout)
		if err != nil {
			return fmt.Errorf("accept_timeout: %w", err)
		}
		s.AcceptTimeout = d
	}
	return nil
}

type GUIConfig struct {
	// CacheAgeSeconds is the default maximum age of the last check result
	// before a launch triggers a fresh check. A per-machine preference
	// (CheckResultsCacheSeconds) overrides it.
	CacheAgeSeconds int `yaml:"cache_age_seconds"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Paths: PathsConfig{
			ManagedInstallsDir: "/Library/Managed Installs",
			WorkerBinary:       "/usr/local/munki/managedsoftwareupdate",
		},
		Status: StatusConfig{
			SocketDir:     "/tmp",
			AcceptTimeout: 30 * time.Second,
		},
		GUI: GUIConfig{
			CacheAgeSeconds: 60,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// The app runs with defaults when no config file exists.
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// PrefsPath is the managed-installs preference file.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.Paths.ManagedInstallsDir, "ManagedInstalls.yaml")
}

// InstallInfoPath is the worker-produced list of pending installs,
// removals and optional installs.
func (c *Config) InstallInfoPath() string {
	return filepath.Join(c.Paths.ManagedInstallsDir, "InstallInfo.yaml")
}

// SelfServeManifestPath records the user's optional-software choices.
func (c *Config) SelfServeManifestPath() string {
	return filepath.Join(c.Paths.ManagedInstallsDir, "manifests", "SelfServeManifest.yaml")
}

// LogoutWarningPath is the drop file the worker writes to announce a
// forced-logout deadline while the app is open.
func (c *Config) LogoutWarningPath() string {
	return filepath.Join(c.Paths.ManagedInstallsDir, "forced_logout_warning.yaml")
}
