package munki

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SelfServeManifest records the user's optional-software choices for the
// worker to act on.
type SelfServeManifest struct {
	ManagedInstalls   []string `yaml:"managed_installs"`
	ManagedUninstalls []string `yaml:"managed_uninstalls"`
}

// ReadSelfServeManifest loads the manifest; a missing file yields an empty
// manifest.
func ReadSelfServeManifest(path string) (SelfServeManifest, error) {
	var m SelfServeManifest
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return SelfServeManifest{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// WriteSelfServeManifest persists the manifest, creating the manifests
// directory if needed.
func WriteSelfServeManifest(path string, m SelfServeManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
