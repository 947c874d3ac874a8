// Package munki wraps the pieces of the managed-install system this app
// consumes but does not own: preference files, the install info the worker
// produces, the self-serve manifest, power and console-user state, and
// launching the privileged worker itself.
package munki

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Prefs are the GUI-relevant preferences from the managed-installs
// preference file. The worker rewrites this file during a run, so the app
// rereads it whenever a session ends.
type Prefs struct {
	LastCheckDate            time.Time `yaml:"LastCheckDate"`
	LastCheckResult          int       `yaml:"LastCheckResult"`
	CheckResultsCacheSeconds int       `yaml:"CheckResultsCacheSeconds"`
	ShowRemovalDetail        bool      `yaml:"ShowRemovalDetail"`
	InstallRequiresLogout    bool      `yaml:"InstallRequiresLogout"`
}

// ReadPrefs loads the preference file. A missing file is not an error; it
// yields zero-valued prefs the same way an unset preference key would.
func ReadPrefs(path string) (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}
