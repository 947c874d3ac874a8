// Package detail renders the item description flyout: the long-form
// description of an update, rendered as markdown in a scrollable panel.
package detail

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/gonchik/munki/internal/theme"
)

const panelWidth = 68

// KeyMap holds the detail overlay key bindings.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding
}

// DefaultKeyMap returns the default detail key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
	}
}

// Model holds the detail overlay state.
type Model struct {
	title    string
	subtitle string
	vp       viewport.Model
	keys     KeyMap
}

// New creates a detail overlay for one item. The description is treated as
// markdown; when rendering fails the raw text is shown instead.
func New(title, subtitle, description string, height int) Model {
	vp := viewport.New(panelWidth-4, bodyHeight(height))
	vp.SetContent(renderMarkdown(description))
	return Model{
		title:    title,
		subtitle: subtitle,
		vp:       vp,
		keys:     DefaultKeyMap(),
	}
}

func bodyHeight(height int) int {
	h := height - 8
	if h < 4 {
		h = 4
	}
	if h > 24 {
		h = 24
	}
	return h
}

func renderMarkdown(description string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(panelWidth-6),
	)
	if err != nil {
		return description
	}
	out, err := r.Render(description)
	if err != nil {
		return description
	}
	return strings.TrimRight(out, "\n")
}

// SetSize updates the scrollable body height.
func (m *Model) SetSize(width, height int) {
	m.vp.Height = bodyHeight(height)
}

// Update handles scroll keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.vp.LineUp(1)
		case key.Matches(msg, m.keys.Down):
			m.vp.LineDown(1)
		}
	}
	return m, nil
}

// View renders the detail panel.
func (m Model) View() string {
	title := theme.StyleTitle.Render(m.title)
	var header string
	if m.subtitle != "" {
		header = title + "  " + theme.StyleDimmed.Render(m.subtitle)
	} else {
		header = title
	}

	sep := theme.StyleDimmed.Render(strings.Repeat("─", panelWidth-4))
	footer := theme.StyleDimmed.Render("j/k: scroll  esc: close")

	content := lipgloss.JoinVertical(lipgloss.Left, header, sep, m.vp.View(), sep, footer)
	return theme.StylePanel.Width(panelWidth).Render(content)
}
