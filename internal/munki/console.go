package munki

import (
	"github.com/shirou/gopsutil/v3/host"
)

// ConsoleUsers returns the distinct user names with a console session.
// More than one means an install could destroy another user's work, so the
// confirmation flow refuses to proceed.
func ConsoleUsers() ([]string, error) {
	stats, err := host.Users()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, u := range stats {
		if u.User == "" || seen[u.User] {
			continue
		}
		seen[u.User] = true
		names = append(names, u.User)
	}
	return names, nil
}
