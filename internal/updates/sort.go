package updates

import (
	"sort"
	"strings"
)

// Normalize orders a list for display: items carrying a mandatory install
// deadline come first, soonest deadline first, followed by the remaining
// items sorted case-insensitively by display name. The input is not
// modified.
func Normalize(items []Item) []Item {
	var forced, regular []Item
	for _, it := range items {
		if it.Forced() {
			forced = append(forced, it)
		} else {
			regular = append(regular, it)
		}
	}

	sort.SliceStable(regular, func(i, j int) bool {
		return strings.ToLower(regular[i].Label()) < strings.ToLower(regular[j].Label())
	})

	// Sort forced items by deadline descending, then insert them at the
	// head of the list one at a time, so the soonest deadline ends up
	// first.
	sort.SliceStable(forced, func(i, j int) bool {
		return forced[i].ForceInstallAfterDate.After(*forced[j].ForceInstallAfterDate)
	})
	out := regular
	for _, it := range forced {
		out = append([]Item{it}, out...)
	}
	return out
}
