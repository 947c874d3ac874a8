package munki

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gonchik/munki/internal/updates"
)

// InstallInfo is the worker-produced structure describing pending managed
// installs, removals, and the optional-install catalog.
type InstallInfo struct {
	ManagedInstalls  []updates.Item `yaml:"managed_installs"`
	Removals         []updates.Item `yaml:"removals"`
	OptionalInstalls []updates.Item `yaml:"optional_installs"`
}

// ReadInstallInfo loads the install info file. A missing file means the
// worker has not produced one yet and yields an empty structure.
func ReadInstallInfo(path string) (InstallInfo, error) {
	var info InstallInfo
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, err
	}
	if err := yaml.Unmarshal(data, &info); err != nil {
		return InstallInfo{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return info, nil
}
