// Package app ties the update decision engine to the Bubble Tea program:
// one root model owning all UI state, with session and watcher goroutines
// feeding it messages.
package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gonchik/munki/internal/config"
	"github.com/gonchik/munki/internal/munki"
	"github.com/gonchik/munki/internal/status"
	"github.com/gonchik/munki/internal/theme"
	"github.com/gonchik/munki/internal/updates"
	"github.com/gonchik/munki/internal/views/detail"
	"github.com/gonchik/munki/internal/views/dialog"
	"github.com/gonchik/munki/internal/views/optional"
	"github.com/gonchik/munki/internal/views/statuswin"
	"github.com/gonchik/munki/internal/views/updatelist"
)

// View identifies which main screen is showing.
type View int

const (
	ViewUpdates View = iota
	ViewOptional
	ViewStatus
)

// WatcherEventMsg wraps an external notification from the filesystem
// watcher.
type WatcherEventMsg struct{ Event munki.Event }

// SessionControl is the slice of the supervisor the model drives directly.
type SessionControl interface {
	RequestStop()
	AckRestartAlert()
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg     *config.Config
	engine  *Engine
	control SessionControl

	keys   KeyMap
	width  int
	height int

	view         View
	statusHidden bool

	statusWin  statuswin.Model
	updateList updatelist.Model
	optionals  optional.Model

	dlg    *dialog.Model
	dlgID  uuid.UUID
	detail *detail.Model

	initCmd tea.Cmd
}

// New creates the root model and runs the launch-time decision flow so
// the first frame already shows the right screen.
func New(cfg *config.Config, engine *Engine, control SessionControl) Model {
	m := Model{
		cfg:        cfg,
		engine:     engine,
		control:    control,
		keys:       DefaultKeyMap(),
		statusWin:  statuswin.New(),
		updateList: updatelist.New(),
		optionals:  optional.New(),
	}
	m.initCmd = m.apply(engine.StartUp())
	return m
}

// Init starts the spinner loop and fires any command the launch flow
// produced.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.statusWin.Init())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusWin.SetSize(msg.Width, msg.Height)
		m.updateList.SetSize(msg.Width, msg.Height)
		m.optionals.SetSize(msg.Width, msg.Height)
		if m.detail != nil {
			m.detail.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.statusWin, cmd = m.statusWin.Update(msg)
		return m, cmd

	case status.ActivateMsg:
		m.statusHidden = false
		m.view = ViewStatus
		return m, nil

	case status.WindowVisibleMsg:
		m.statusHidden = !msg.Visible
		return m, nil

	case status.TitleMsg, status.MessageMsg, status.DetailMsg,
		status.ProgressMsg, status.StopButtonMsg:
		var cmd tea.Cmd
		m.statusWin, cmd = m.statusWin.Update(msg)
		return m, cmd

	case status.RestartAlertMsg:
		eff := m.engine.RestartAlert()
		return m.applyEffect(eff)

	case status.SessionEndedMsg:
		eff := m.engine.SessionEnded(msg.Result)
		return m.applyEffect(eff)

	case dialog.ChosenMsg:
		return m.handleDialogChoice(msg.Index)

	case optional.ApplyMsg:
		eff := m.engine.ApplyOptionalChoices(msg.Rows)
		return m.applyEffect(eff)

	case WatcherEventMsg:
		switch msg.Event.Kind {
		case munki.EventUpdatesChanged:
			eff := m.engine.UpdatesChanged()
			next, cmd := m.applyEffect(eff)
			nm := next.(Model)
			nm.refreshLists()
			return nm, cmd
		case munki.EventLogoutWarning:
			eff := m.engine.ForcedLogoutWarning(msg.Event.LogoutTime)
			return m.applyEffect(eff)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// A pending dialog is modal.
	if m.dlg != nil {
		d, cmd := m.dlg.Update(msg)
		m.dlg = &d
		return m, cmd
	}

	if m.detail != nil {
		if key.Matches(msg, m.keys.Escape) {
			m.detail = nil
			return m, nil
		}
		d, cmd := m.detail.Update(msg)
		m.detail = &d
		return m, cmd
	}

	switch m.view {
	case ViewStatus:
		if key.Matches(msg, m.keys.Stop) && m.statusWin.StopAvailable() {
			m.control.RequestStop()
			m.statusWin.MarkStopRequested()
		}
		return m, nil

	case ViewOptional:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Updates) {
			m.view = ViewUpdates
			return m, nil
		}
		var cmd tea.Cmd
		m.optionals, cmd = m.optionals.Update(msg)
		return m, cmd

	default: // ViewUpdates
		switch {
		case key.Matches(msg, m.keys.Later):
			eff := m.engine.Later()
			return m.applyEffect(eff)

		case key.Matches(msg, m.keys.UpdateNow):
			eff := m.engine.ConfirmInstall()
			return m.applyEffect(eff)

		case key.Matches(msg, m.keys.Optional):
			if m.engine.HasOptional() {
				m.optionals.SetRows(m.engine.OptionalRows())
				m.view = ViewOptional
			}
			return m, nil

		case key.Matches(msg, m.keys.Detail):
			if row := m.updateList.Selected(); row != nil {
				d := detail.New(row.Name, row.Version, row.Description, m.height)
				m.detail = &d
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.updateList, cmd = m.updateList.Update(msg)
		return m, cmd
	}
}

func (m Model) handleDialogChoice(index int) (tea.Model, tea.Cmd) {
	d := m.engine.Dialog()
	if d == nil || d.ID != m.dlgID {
		return m, nil
	}
	if index < 0 || index >= len(d.Buttons) {
		return m, nil
	}
	eff := m.engine.HandleOutcome(d.ID, d.Buttons[index].Outcome)
	return m.applyEffect(eff)
}

// applyEffect translates an engine effect into view state and syncs the
// dialog overlay with the engine's pending dialog.
func (m Model) applyEffect(eff Effect) (tea.Model, tea.Cmd) {
	cmd := (&m).apply(eff)
	return m, cmd
}

func (m *Model) apply(eff Effect) tea.Cmd {
	var cmd tea.Cmd
	switch eff {
	case EffectShowUpdates:
		m.view = ViewUpdates
		m.refreshLists()
	case EffectShowOptional:
		m.view = ViewOptional
		m.refreshLists()
	case EffectShowStatus:
		m.view = ViewStatus
		m.statusHidden = false
		m.statusWin.Reset()
		cmd = m.statusWin.Init()
	case EffectAckRestart:
		m.control.AckRestartAlert()
	case EffectQuit:
		cmd = tea.Quit
	}
	m.syncDialog()
	return cmd
}

// syncDialog rebuilds the dialog overlay whenever the engine's pending
// dialog changed identity, and drops it when none is pending.
func (m *Model) syncDialog() {
	d := m.engine.Dialog()
	if d == nil {
		m.dlg = nil
		m.dlgID = uuid.UUID{}
		return
	}
	if d.ID == m.dlgID && m.dlg != nil {
		return
	}
	labels := make([]string, len(d.Buttons))
	for i, b := range d.Buttons {
		labels[i] = b.Label
	}
	dv := dialog.New(d.Title, d.Body, labels...)
	if d.Danger {
		dv = dv.WithDanger()
	}
	m.dlg = &dv
	m.dlgID = d.ID
}

func (m *Model) refreshLists() {
	m.updateList.SetTable(m.engine.Table())
	m.optionals.SetRows(m.engine.OptionalRows())
}

// View renders the active screen with any overlay on top.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	var body string
	switch m.view {
	case ViewStatus:
		if m.statusHidden {
			body = theme.StyleDimmed.Render("  Working in the background...")
		} else {
			body = m.statusWin.View()
		}
	case ViewOptional:
		body = lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleTitle.Render("  Optional Software"),
			"",
			m.optionals.View(),
			"",
			theme.StyleDimmed.Render("  space:toggle  a:apply  esc:back"))
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleTitle.Render("  Managed Software Update"),
			"",
			m.updateList.View(),
			"",
			m.updatesHelp())
	}

	if m.dlg != nil {
		return m.centered(m.dlg.View())
	}
	if m.detail != nil {
		return m.centered(m.detail.View())
	}
	return body
}

func (m Model) updatesHelp() string {
	parts := []string{"j/k:navigate", "enter:details", "u:update now"}
	if m.engine.HasOptional() {
		parts = append(parts, "o:optional software")
	}
	parts = append(parts, "q:later")
	return theme.StyleDimmed.Render("  " + strings.Join(parts, "  "))
}

func (m Model) centered(overlay string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}

// SelectedUpdate exposes the highlighted row for tests.
func (m Model) SelectedUpdate() *updates.Row {
	return m.updateList.Selected()
}
