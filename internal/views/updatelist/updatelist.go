// Package updatelist renders the pending-updates table with the restart or
// logout banner derived from it.
package updatelist

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
	nameWidth    = 30
	versionWidth = 14
	sizeWidth    = 10
)

// KeyMap holds the update-list key bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Detail key.Binding
}

// DefaultKeyMap returns the default update-list key bindings.
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
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
	}
}

// Model holds the update list state.
type Model struct {
	table  updates.Table
	keys   KeyMap
	cursor int

	width  int
	height int
}

// New creates an empty update list.
func New() Model {
	return Model{keys: DefaultKeyMap()}
}

// SetTable replaces the displayed table and clamps the cursor.
func (m *Model) SetTable(t updates.Table) {
	m.table = t
	if m.cursor >= len(t.Rows) {
		m.cursor = len(t.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the row under the cursor, or nil when the list is empty.
func (m Model) Selected() *updates.Row {
	if m.cursor < 0 || m.cursor >= len(m.table.Rows) {
		return nil
	}
	row := m.table.Rows[m.cursor]
	return &row
}

// Count returns the number of displayed rows.
func (m Model) Count() int { return len(m.table.Rows) }

// Update handles key messages for list navigation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.table.Rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// View renders the update table.
func (m Model) View() string {
	if len(m.table.Rows) == 0 {
		return theme.StyleDimmed.Render("  No pending updates.")
	}

	var b strings.Builder
	b.WriteString(renderHeader() + "\n")
	for i, row := range m.table.Rows {
		b.WriteString(m.renderRow(row, i == m.cursor))
	}

	if banner := m.banner(); banner != "" {
		b.WriteString("\n" + banner)
	}
	return b.String()
}

func renderHeader() string {
	header := fmt.Sprintf("  %-*s %-*s %*s",
		nameWidth, "Name", versionWidth, "Version", sizeWidth, "Size")
	return theme.StyleDimmed.Render(header) + "\n" +
		theme.StyleDimmed.Render("  "+strings.Repeat("─", nameWidth+versionWidth+sizeWidth+2))
}

func (m Model) renderRow(row updates.Row, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}

	line := fmt.Sprintf("%s%-*s %-*s %*s",
		prefix,
		nameWidth, truncate(row.Name, nameWidth),
		versionWidth, truncate(row.Version, versionWidth),
		sizeWidth, row.Size)

	style := lipgloss.NewStyle().Foreground(theme.ColorBright)
	switch {
	case selected:
		style = theme.StyleSelected
	case row.Forced:
		style = lipgloss.NewStyle().Foreground(theme.ColorForced)
	case row.RestartAction.NeedsRestart():
		style = lipgloss.NewStyle().Foreground(theme.ColorRestart)
	case row.RestartAction.NeedsLogout():
		style = lipgloss.NewStyle().Foreground(theme.ColorLogout)
	}

	out := style.Render(line) + "\n"
	if row.Description != "" {
		out += theme.StyleDimmed.Render("    "+truncate(firstLine(row.Description), m.descWidth())) + "\n"
	}
	return out
}

func (m Model) descWidth() int {
	w := nameWidth + versionWidth + sizeWidth
	if m.width > 8 && m.width-8 < w {
		w = m.width - 8
	}
	return w
}

// banner renders the disruption notice below the table.
func (m Model) banner() string {
	switch {
	case m.table.RestartRequired:
		return lipgloss.NewStyle().Foreground(theme.ColorRestart).Bold(true).
			Render("  ⟳ A restart is required after updating.")
	case m.table.LogoutRequired:
		return lipgloss.NewStyle().Foreground(theme.ColorLogout).Bold(true).
			Render("  ⎋ A logout is required before updating.")
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
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
