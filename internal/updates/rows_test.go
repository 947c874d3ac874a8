package updates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildUpdateTableFlags(t *testing.T) {
	tests := []struct {
		name        string
		installs    []Item
		wantRestart bool
		wantLogout  bool
	}{
		{
			name:        "plain items need nothing",
			installs:    []Item{{Name: "a"}, {Name: "b"}},
			wantRestart: false,
			wantLogout:  false,
		},
		{
			name: "require restart sets restart flag",
			installs: []Item{
				{Name: "a", RestartAction: RequireRestart},
				{Name: "b"},
			},
			wantRestart: true,
		},
		{
			name: "recommend restart also sets restart flag",
			installs: []Item{
				{Name: "a", RestartAction: RecommendRestart},
			},
			wantRestart: true,
		},
		{
			name: "logout actions set logout flag",
			installs: []Item{
				{Name: "a", RestartAction: RequireLogout},
				{Name: "b", RestartAction: RecommendLogout},
			},
			wantLogout: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := BuildUpdateTable(tt.installs, nil, false)
			assert.Equal(t, tt.wantRestart, table.RestartRequired)
			assert.Equal(t, tt.wantLogout, table.LogoutRequired)
		})
	}
}

func TestBuildUpdateTableDeadlineDescription(t *testing.T) {
	deadline := time.Date(2026, time.September, 4, 17, 0, 0, 0, time.Local)
	installs := []Item{{
		Name:                  "firefox",
		Description:           "A web browser.",
		ForceInstallAfterDate: &deadline,
	}}

	table := BuildUpdateTable(installs, nil, false)

	assert.Len(t, table.Rows, 1)
	assert.True(t, table.Rows[0].Forced)
	assert.Contains(t, table.Rows[0].Description, "This item must be installed by ")
	assert.Contains(t, table.Rows[0].Description, "A web browser.")
}

func TestBuildUpdateTableRemovalDetail(t *testing.T) {
	removals := []Item{
		{Name: "old-tool", DisplayName: "Old Tool", RestartAction: RequireLogout},
	}

	table := BuildUpdateTable(nil, removals, true)

	assert.Len(t, table.Rows, 1)
	assert.Equal(t, "Old Tool (will be removed)", table.Rows[0].Name)
	assert.Equal(t, "This item will be removed.", table.Rows[0].Description)
	assert.True(t, table.LogoutRequired)
}

func TestBuildUpdateTableRemovalSummaryPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		removals []Item
		want     RestartAction
	}{
		{
			name: "restart beats logout when both present",
			removals: []Item{
				{Name: "a", RestartAction: RequireLogout},
				{Name: "b", RestartAction: RecommendRestart},
			},
			want: RequireRestart,
		},
		{
			name:     "logout only collapses to RequireLogout",
			removals: []Item{{Name: "a", RestartAction: RecommendLogout}},
			want:     RequireLogout,
		},
		{
			name:     "no disruption stays None",
			removals: []Item{{Name: "a"}},
			want:     RestartNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := BuildUpdateTable(nil, tt.removals, false)
			assert.Len(t, table.Rows, 1)
			assert.Equal(t, "Software removals", table.Rows[0].Name)
			assert.Equal(t, tt.want, table.Rows[0].RestartAction)
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		kb   int64
		want string
	}{
		{512, "512 KB"},
		{2048, "2.0 MB"},
		{1536, "1.5 MB"},
		{3 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanSize(tt.kb))
	}
}

func TestTrimVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"5.0.0.0", "5.0"},
		{"1.2.3", "1.2.3"},
		{"10.0", "10.0"},
		{"2.0.1.0", "2.0.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrimVersion(tt.in))
	}
}

func TestCollectBlockingApps(t *testing.T) {
	items := []Item{
		{Name: "a", BlockingApplications: []string{"Word.app", "Excel.app"}},
		{Name: "b", Installs: []InstallRecord{
			{Type: "application", Path: "/Applications/Safari.app"},
			{Type: "file", Path: "/etc/b.conf"},
		}},
		// An explicit empty list suppresses the installs fallback.
		{Name: "c", BlockingApplications: []string{}, Installs: []InstallRecord{
			{Type: "application", Path: "/Applications/Ignored.app"},
		}},
	}

	got := CollectBlockingApps(items)

	assert.Equal(t, []string{"Word.app", "Excel.app", "Safari.app"}, got)
}
