package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the top-level keyboard bindings. View-specific bindings
// (list navigation, toggles) live with their views.
type KeyMap struct {
	UpdateNow key.Binding
	Optional  key.Binding
	Updates   key.Binding
	Detail    key.Binding
	Stop      key.Binding
	Escape    key.Binding
	Later     key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		UpdateNow: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "update now"),
		),
		Optional: key.NewBinding(
			key.WithKeys("o", "tab"),
			key.WithHelp("o", "optional software"),
		),
		Updates: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "updates"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Later: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "later"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
