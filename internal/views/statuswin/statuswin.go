// Package statuswin renders the status window shown while a worker run is
// in progress: title bar, message, detail line, progress indicator, and the
// stop button.
package statuswin

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gonchik/munki/internal/status"
	"github.com/gonchik/munki/internal/theme"
)

const panelWidth = 64

// Model holds the status window state. It is driven entirely by messages
// forwarded from the status session.
type Model struct {
	title   string
	message string
	detail  string

	progress status.Progress
	bar      progress.Model
	spin     spinner.Model

	stopHidden    bool
	stopEnabled   bool
	stopRequested bool

	width int
}

// New creates a status window with the placeholder text shown before
// the worker reports anything.
func New() Model {
	bar := progress.New(
		progress.WithGradient(string(theme.ColorAccent), string(theme.ColorHealthy)),
		progress.WithoutPercentage(),
	)
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = lipgloss.NewStyle().Foreground(theme.ColorAccent)
	return Model{
		title:       "Managed Software Update",
		message:     "Starting...",
		progress:    status.Progress{Indeterminate: true},
		bar:         bar,
		spin:        spin,
		stopEnabled: true,
	}
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// SetSize updates the available rendering width.
func (m *Model) SetSize(width, height int) {
	m.width = width
	w := panelWidth - 8
	if width > 0 && width-12 < w {
		w = width - 12
	}
	if w > 0 {
		m.bar.Width = w
	}
}

// Reset restores the initial text for a fresh session.
func (m *Model) Reset() {
	m.title = "Managed Software Update"
	m.message = "Starting..."
	m.detail = ""
	m.progress = status.Progress{Indeterminate: true}
	m.stopHidden = false
	m.stopEnabled = true
	m.stopRequested = false
}

// StopRequested reports whether the user has pressed stop this session.
func (m Model) StopRequested() bool { return m.stopRequested }

// StopAvailable reports whether the stop button can currently be pressed.
func (m Model) StopAvailable() bool {
	return !m.stopHidden && m.stopEnabled && !m.stopRequested
}

// MarkStopRequested latches the stop press for the rest of the session.
func (m *Model) MarkStopRequested() {
	m.stopRequested = true
}

// Update handles session messages and spinner ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case status.TitleMsg:
		m.title = msg.Title
	case status.MessageMsg:
		m.message = msg.Text
	case status.DetailMsg:
		m.detail = msg.Text
	case status.ProgressMsg:
		m.progress = msg.Progress
	case status.StopButtonMsg:
		m.stopHidden = msg.Hidden
		m.stopEnabled = msg.Enabled
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status panel.
func (m Model) View() string {
	title := theme.StyleTitle.Render(m.title)

	message := lipgloss.NewStyle().Foreground(theme.ColorBright).Render(m.message)
	detail := theme.StyleDimmed.Render(m.detail)

	var indicator string
	if m.progress.Indeterminate {
		indicator = m.spin.View() + " " + theme.StyleDimmed.Render("working...")
	} else {
		indicator = m.bar.ViewAs(m.progress.Percent / 100)
	}

	sections := []string{title, "", message, detail, "", indicator}
	if btn := m.stopButton(); btn != "" {
		sections = append(sections, "", btn)
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return theme.StylePanel.Width(panelWidth).Render(body)
}

func (m Model) stopButton() string {
	if m.stopHidden {
		return ""
	}
	switch {
	case m.stopRequested:
		return theme.StyleDimmed.Render("[ Stopping... ]")
	case !m.stopEnabled:
		return theme.StyleDimmed.Render("[ Stop ]")
	default:
		return lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("[ Stop ]") +
			theme.StyleDimmed.Render("  (s)")
	}
}
