// Package dialog renders a modal alert panel with a row of buttons. The
// parent app decides what each button means; the dialog only tracks which
// one is highlighted.
package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gonchik/munki/internal/theme"
)

const panelWidth = 60

// KeyMap holds the dialog key bindings.
type KeyMap struct {
	Left   key.Binding
	Right  key.Binding
	Choose key.Binding
}

// DefaultKeyMap returns the default dialog key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("h", "left", "shift+tab"),
			key.WithHelp("h/←", "prev button"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right", "tab"),
			key.WithHelp("l/→", "next button"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
	}
}

// ChosenMsg is emitted when the user picks a button. Index is the position
// of the chosen button in the Buttons slice passed to New.
type ChosenMsg struct{ Index int }

// Model holds the dialog state.
type Model struct {
	title   string
	body    string
	buttons []string
	keys    KeyMap
	idx     int
	danger  bool
}

// New creates a dialog with the first button highlighted.
func New(title, body string, buttons ...string) Model {
	return Model{
		title:   title,
		body:    body,
		buttons: buttons,
		keys:    DefaultKeyMap(),
	}
}

// WithDanger marks the dialog as a destructive alert, coloring its title.
func (m Model) WithDanger() Model {
	m.danger = true
	return m
}

// WithDefault highlights the button at idx instead of the first one.
func (m Model) WithDefault(idx int) Model {
	if idx >= 0 && idx < len(m.buttons) {
		m.idx = idx
	}
	return m
}

// SetBody replaces the dialog body text. Used for countdown dialogs whose
// text changes while they are displayed.
func (m *Model) SetBody(body string) {
	m.body = body
}

// Selected returns the index of the highlighted button.
func (m Model) Selected() int { return m.idx }

// Update handles key messages for button selection.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Left):
			if m.idx > 0 {
				m.idx--
			}
		case key.Matches(msg, m.keys.Right):
			if m.idx < len(m.buttons)-1 {
				m.idx++
			}
		case key.Matches(msg, m.keys.Choose):
			idx := m.idx
			return m, func() tea.Msg { return ChosenMsg{Index: idx} }
		}
	}
	return m, nil
}

// View renders the dialog panel.
func (m Model) View() string {
	titleColor := theme.ColorBright
	if m.danger {
		titleColor = theme.ColorDanger
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(titleColor).Render(m.title)

	body := lipgloss.NewStyle().
		Foreground(theme.ColorBright).
		Width(panelWidth - 4).
		Render(m.body)

	sections := []string{title, "", body}
	if row := m.renderButtons(); row != "" {
		sections = append(sections, "", row)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return theme.StylePanel.Width(panelWidth).Render(content)
}

func (m Model) renderButtons() string {
	if len(m.buttons) == 0 {
		return ""
	}
	rendered := make([]string, len(m.buttons))
	for i, label := range m.buttons {
		if i == m.idx {
			rendered[i] = theme.StyleSelected.Render("[ " + label + " ]")
		} else {
			rendered[i] = theme.StyleDimmed.Render("  " + label + "  ")
		}
	}
	return strings.Join(rendered, "  ")
}
