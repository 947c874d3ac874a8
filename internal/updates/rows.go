package updates

import (
	"fmt"
	"strings"
	"time"
)

// Row is one line of the update table, flattened for display.
type Row struct {
	Name          string
	Version       string
	Size          string
	Description   string
	RestartAction RestartAction
	Forced        bool
}

// Table is the displayable update list plus the disruption flags
// recomputed from it. The flags are rebuilt every time the list is, never
// carried over.
type Table struct {
	Rows            []Row
	RestartRequired bool
	LogoutRequired  bool
}

// BuildUpdateTable flattens pending installs and removals into display rows
// and recomputes the restart/logout flags from the result.
//
// Installs with a deadline get the deadline prepended to their
// description. Removals either appear individually (showRemovalDetail) or
// collapse into a single summary row whose RestartAction checks Restart
// before Logout.
func BuildUpdateTable(installs, removals []Item, showRemovalDetail bool) Table {
	var rows []Row
	for _, it := range installs {
		desc := it.Description
		if it.Forced() {
			desc = "This item must be installed by " +
				it.ForceInstallAfterDate.Local().Format(deadlineFormat) +
				"\n\n" + desc
		}
		rows = append(rows, Row{
			Name:          it.Label(),
			Version:       TrimVersion(it.VersionToInstall),
			Size:          sizeText(it),
			Description:   desc,
			RestartAction: it.RestartAction,
			Forced:        it.Forced(),
		})
	}

	if len(removals) > 0 {
		if showRemovalDetail {
			for _, it := range removals {
				rows = append(rows, Row{
					Name:          it.Label() + " (will be removed)",
					Version:       TrimVersion(it.VersionToInstall),
					Size:          sizeText(it),
					Description:   "This item will be removed.",
					RestartAction: it.RestartAction,
				})
			}
		} else {
			rows = append(rows, Row{
				Name:          "Software removals",
				Description:   "Scheduled removal of managed software.",
				RestartAction: removalSummaryAction(removals),
			})
		}
	}

	t := Table{Rows: rows}
	for _, r := range rows {
		if r.RestartAction.NeedsRestart() {
			t.RestartRequired = true
		} else if r.RestartAction.NeedsLogout() {
			t.LogoutRequired = true
		}
	}
	return t
}

const deadlineFormat = "January 2, 2006 3:04 PM"

// FormatDeadline renders a deadline the way it appears in user-facing
// text.
func FormatDeadline(t time.Time) string {
	return t.Local().Format(deadlineFormat)
}

// removalSummaryAction combines the removal list's actions for the summary
// row. Restart is checked before Logout, so a list containing both
// collapses to RequireRestart.
func removalSummaryAction(removals []Item) RestartAction {
	restart := false
	logout := false
	for _, it := range removals {
		if it.RestartAction.NeedsRestart() {
			restart = true
		}
		if it.RestartAction.NeedsLogout() {
			logout = true
		}
	}
	if restart {
		return RequireRestart
	}
	if logout {
		return RequireLogout
	}
	return RestartNone
}

func sizeText(it Item) string {
	if it.InstallerItemSize > 0 {
		return HumanSize(it.InstallerItemSize)
	}
	if it.InstalledSize > 0 {
		return HumanSize(it.InstalledSize)
	}
	return ""
}

// HumanSize formats a size given in kilobytes.
func HumanSize(kb int64) string {
	switch {
	case kb >= 1024*1024:
		return fmt.Sprintf("%.1f GB", float64(kb)/(1024*1024))
	case kb >= 1024:
		return fmt.Sprintf("%.1f MB", float64(kb)/1024)
	default:
		return fmt.Sprintf("%d KB", kb)
	}
}

// TrimVersion drops trailing ".0" components while more than two remain,
// so "5.0.0.0" displays as "5.0".
func TrimVersion(version string) string {
	if version == "" {
		return ""
	}
	parts := strings.Split(version, ".")
	for len(parts) > 2 && parts[len(parts)-1] == "0" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

// CollectBlockingApps gathers the application names to check before a
// no-logout install: the explicit blocking_applications list when present,
// otherwise the basenames of application install records.
func CollectBlockingApps(items []Item) []string {
	var apps []string
	for _, it := range items {
		if it.BlockingApplications != nil {
			apps = append(apps, it.BlockingApplications...)
			continue
		}
		for _, rec := range it.Installs {
			if rec.Type == "application" && rec.Path != "" {
				apps = append(apps, baseName(rec.Path))
			}
		}
	}
	return apps
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
