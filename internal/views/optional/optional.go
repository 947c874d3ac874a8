// Package optional renders the self-serve software table: items the user
// can choose to install or remove.
package optional

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gonchik/munki/internal/theme"
	"github.com/gonchik/munki/internal/updates"
)

const (
	nameWidth   = 28
	statusWidth = 24
	sizeWidth   = 10
)

// KeyMap holds the optional-software key bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Apply  key.Binding
}

// DefaultKeyMap returns the default optional-software key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev item"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next item"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "apply changes"),
		),
	}
}

// ApplyMsg is emitted when the user asks to apply their choices. The app
// diffs the rows against the self-serve manifest and kicks off a check.
type ApplyMsg struct{ Rows []updates.OptionalRow }

// Model holds the optional-software table state.
type Model struct {
	rows   []updates.OptionalRow
	keys   KeyMap
	cursor int

	width  int
	height int
}

// New creates an empty optional-software table.
func New() Model {
	return Model{keys: DefaultKeyMap()}
}

// SetRows replaces the table contents and clamps the cursor.
func (m *Model) SetRows(rows []updates.OptionalRow) {
	m.rows = rows
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Rows returns the current rows including any pending toggles.
func (m Model) Rows() []updates.OptionalRow { return m.rows }

// Dirty reports whether any row differs from its original managed state.
func (m Model) Dirty() bool {
	for _, r := range m.rows {
		if r.Managed != r.OriginalManaged {
			return true
		}
	}
	return false
}

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles key messages for navigation and toggling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if m.cursor >= 0 && m.cursor < len(m.rows) && m.rows[m.cursor].Enabled {
				m.rows[m.cursor].Managed = !m.rows[m.cursor].Managed
			}
		case key.Matches(msg, m.keys.Apply):
			if m.Dirty() {
				rows := m.rows
				return m, func() tea.Msg { return ApplyMsg{Rows: rows} }
			}
		}
	}
	return m, nil
}

// View renders the optional-software table.
func (m Model) View() string {
	if len(m.rows) == 0 {
		return theme.StyleDimmed.Render("  No optional software available.")
	}

	var b strings.Builder
	header := fmt.Sprintf("      %-*s %-*s %*s",
		nameWidth, "Name", statusWidth, "Status", sizeWidth, "Size")
	b.WriteString(theme.StyleDimmed.Render(header) + "\n")
	b.WriteString(theme.StyleDimmed.Render("  "+strings.Repeat("─", nameWidth+statusWidth+sizeWidth+8)) + "\n")

	for i, row := range m.rows {
		b.WriteString(m.renderRow(row, i == m.cursor) + "\n")
	}

	if m.Dirty() {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.ColorAccent).
			Render("  Press a to apply your changes."))
	}
	return b.String()
}

func (m Model) renderRow(row updates.OptionalRow, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}

	check := "[ ]"
	if row.Managed {
		check = "[x]"
	}

	line := fmt.Sprintf("%s%s %-*s %-*s %*s",
		prefix, check,
		nameWidth, truncate(row.Name, nameWidth),
		statusWidth, truncate(row.Status, statusWidth),
		sizeWidth, row.Size)

	var style lipgloss.Style
	switch {
	case selected:
		style = theme.StyleSelected
	case !row.Enabled:
		style = theme.StyleDimmed
	case row.Managed != row.OriginalManaged:
		style = lipgloss.NewStyle().Foreground(theme.ColorAccent)
	case row.Installed:
		style = lipgloss.NewStyle().Foreground(theme.ColorHealthy)
	default:
		style = lipgloss.NewStyle().Foreground(theme.ColorBright)
	}
	return style.Render(line)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return s[:max-1] + "…"
}
