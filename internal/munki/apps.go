package munki

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// RunningBlockingApps returns which of the given application names match a
// currently-running process. Names are compared case-insensitively with
// any ".app" suffix and leading path stripped, so "Microsoft Word.app"
// matches a "Microsoft Word" process.
func RunningBlockingApps(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	running := make(map[string]bool, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		running[strings.ToLower(name)] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if running[normalizeAppName(name)] {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

func normalizeAppName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".app")
	return strings.ToLower(name)
}
