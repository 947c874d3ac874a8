// Package theme provides the Lip Gloss color palette and reusable styles
// for the Managed Software Update TUI. It is a leaf package with no
// internal imports to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Disruption colors.
var (
	ColorRestart = lipgloss.Color("#dc2626")
	ColorLogout  = lipgloss.Color("#d97706")
	ColorForced  = lipgloss.Color("#f59e0b")
)

// Session state colors.
var (
	ColorRunning  = lipgloss.Color("#2563eb")
	ColorComplete = lipgloss.Color("#16a34a")
	ColorFailed   = lipgloss.Color("#dc2626")
	ColorStopped  = lipgloss.Color("#854d0e")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorAccent  = lipgloss.Color("#3b82f6")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Shared styles.
var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright).
			Background(lipgloss.Color("#1f2937"))
)
