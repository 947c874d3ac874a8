package updates

import (
	"time"

	"gopkg.in/yaml.v3"
)

// RestartAction describes the disruption an item's install or removal
// imposes on the console user.
type RestartAction int

const (
	RestartNone RestartAction = iota
	RequireRestart
	RecommendRestart
	RequireLogout
	RecommendLogout
)

var restartActionNames = map[RestartAction]string{
	RestartNone:      "None",
	RequireRestart:   "RequireRestart",
	RecommendRestart: "RecommendRestart",
	RequireLogout:    "RequireLogout",
	RecommendLogout:  "RecommendLogout",
}

var restartActionFromName = map[string]RestartAction{
	"None":             RestartNone,
	"RequireRestart":   RequireRestart,
	"RecommendRestart": RecommendRestart,
	"RequireLogout":    RequireLogout,
	"RecommendLogout":  RecommendLogout,
}

func (a RestartAction) String() string {
	if s, ok := restartActionNames[a]; ok {
		return s
	}
	return "None"
}

// NeedsRestart reports whether the action implies a restart.
func (a RestartAction) NeedsRestart() bool {
	return a == RequireRestart || a == RecommendRestart
}

// NeedsLogout reports whether the action implies a logout.
func (a RestartAction) NeedsLogout() bool {
	return a == RequireLogout || a == RecommendLogout
}

func (a RestartAction) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML tolerates unknown action names: the worker is trusted but
// not version-locked to this app, so unrecognized values decode as None.
func (a *RestartAction) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if v, ok := restartActionFromName[s]; ok {
		*a = v
	} else {
		*a = RestartNone
	}
	return nil
}

// InstallRecord describes a filesystem object an item installs. Items
// without an explicit blocking_applications list fall back to the
// application records here.
type InstallRecord struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// Item is one update, removal, or optional install from InstallInfo.
// Sizes are in kilobytes, as the worker reports them.
type Item struct {
	Name                  string          `yaml:"name"`
	DisplayName           string          `yaml:"display_name,omitempty"`
	Description           string          `yaml:"description,omitempty"`
	VersionToInstall      string          `yaml:"version_to_install,omitempty"`
	InstallerItemSize     int64           `yaml:"installer_item_size,omitempty"`
	InstalledSize         int64           `yaml:"installed_size,omitempty"`
	RestartAction         RestartAction   `yaml:"RestartAction,omitempty"`
	ForceInstallAfterDate *time.Time      `yaml:"force_install_after_date,omitempty"`
	BlockingApplications  []string        `yaml:"blocking_applications,omitempty"`
	Installs              []InstallRecord `yaml:"installs,omitempty"`
	FirmwareAlertText     string          `yaml:"firmware_alert_text,omitempty"`

	// Optional-install state reported by the worker.
	Installed              bool   `yaml:"installed,omitempty"`
	NeedsUpdate            bool   `yaml:"needs_update,omitempty"`
	WillBeInstalled        bool   `yaml:"will_be_installed,omitempty"`
	WillBeRemoved          bool   `yaml:"will_be_removed,omitempty"`
	Uninstallable          bool   `yaml:"uninstallable,omitempty"`
	LicensedSeatsAvailable *bool  `yaml:"licensed_seats_available,omitempty"`
	Note                   string `yaml:"note,omitempty"`
}

// Label returns the name to display, preferring DisplayName.
func (it Item) Label() string {
	if it.DisplayName != "" {
		return it.DisplayName
	}
	return it.Name
}

// Forced reports whether the item carries a mandatory install deadline.
func (it Item) Forced() bool {
	return it.ForceInstallAfterDate != nil
}
