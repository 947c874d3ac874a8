package app

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gonchik/munki/internal/config"
	"github.com/gonchik/munki/internal/munki"
	"github.com/gonchik/munki/internal/status"
	"github.com/gonchik/munki/internal/updates"
)

// Run modes. Normal is the interactive window; MunkiStatus is the
// status-window-only mode used at the login window.
const (
	RunmodeNormal      = "Normal"
	RunmodeMunkiStatus = "MunkiStatus"
)

// launch-time horizon for treating a deadline as imminent enough to skip
// the cache-age check.
const launchForcedHorizon = 2 * time.Hour

// Effect tells the root model what to do after an engine decision. Any
// pending dialog is carried separately via Dialog().
type Effect int

const (
	EffectNone Effect = iota
	// EffectShowUpdates brings the update window to the front.
	EffectShowUpdates
	// EffectShowOptional switches to the optional-software view.
	EffectShowOptional
	// EffectShowStatus switches to the status window; a session is live.
	EffectShowStatus
	// EffectAckRestart unblocks the worker's pending restart alert reply.
	EffectAckRestart
	// EffectQuit terminates the application.
	EffectQuit
)

// Launcher starts the privileged worker in one of its modes.
type Launcher interface {
	StartUpdateCheck(suppressAppleCheck bool) error
	JustUpdate() error
	LogoutAndUpdate() error
}

// SessionStarter opens a status session for an imminent worker run.
type SessionStarter interface {
	Start(socketDir string, timeout time.Duration) error
}

// Engine is the update decision engine: it owns the update list, the
// disruption flags, and the single pending dialog, and routes every state
// change through its own methods. Host probes are injectable so tests can
// script console, power, and process state.
type Engine struct {
	cfg      *config.Config
	launcher Launcher
	sessions SessionStarter

	consoleUsers func() ([]string, error)
	powerInfo    func() munki.PowerInfo
	runningApps  func([]string) ([]string, error)
	now          func() time.Time

	runmode    string
	workerMode string

	prefs         munki.Prefs
	installs      []updates.Item
	removals      []updates.Item
	table         updates.Table
	optionalItems []updates.Item
	optionalRows  []updates.OptionalRow

	dialog *Dialog
}

// NewEngine creates an engine wired to the real host probes.
func NewEngine(cfg *config.Config, launcher Launcher, sessions SessionStarter) *Engine {
	return &Engine{
		cfg:          cfg,
		launcher:     launcher,
		sessions:     sessions,
		consoleUsers: munki.ConsoleUsers,
		powerInfo: func() munki.PowerInfo {
			p, err := munki.ReadPowerInfo(munki.DefaultPowerSupplyDir)
			if err != nil {
				log.Printf("Reading power info: %v", err)
			}
			return p
		},
		runningApps: munki.RunningBlockingApps,
		now:         time.Now,
		runmode:     RunmodeNormal,
	}
}

// SetRunmode overrides the run mode before StartUp.
func (e *Engine) SetRunmode(mode string) {
	if mode != "" {
		e.runmode = mode
	}
}

// Runmode returns the active run mode.
func (e *Engine) Runmode() string { return e.runmode }

// Dialog returns the pending dialog, or nil.
func (e *Engine) Dialog() *Dialog { return e.dialog }

// Table returns the current update table.
func (e *Engine) Table() updates.Table { return e.table }

// OptionalRows returns the optional-software table.
func (e *Engine) OptionalRows() []updates.OptionalRow { return e.optionalRows }

// HasOptional reports whether any optional software is on offer.
func (e *Engine) HasOptional() bool { return len(e.optionalRows) > 0 }

// StartUp decides the first screen: the status window in MunkiStatus
// mode, a fresh check when the last result is stale, or the cached
// update list.
func (e *Engine) StartUp() Effect {
	e.reloadPrefs()
	if e.runmode == RunmodeMunkiStatus {
		if err := e.sessions.Start(e.cfg.Status.SocketDir, e.cfg.Status.AcceptTimeout); err != nil {
			log.Printf("Opening status session: %v", err)
			return EffectQuit
		}
		return EffectShowStatus
	}

	e.loadUpdates()

	lastcheck := e.prefs.LastCheckDate
	if updates.ForcedSoon(e.installs, launchForcedHorizon, e.now()) {
		// Deadlines loom; show what we have instead of burning time on
		// a fresh check.
		lastcheck = e.now()
	}
	if lastcheck.IsZero() {
		return e.CheckForUpdates(false)
	}

	maxAge := e.prefs.CheckResultsCacheSeconds
	if maxAge == 0 {
		maxAge = e.cfg.GUI.CacheAgeSeconds
	}
	if e.now().Sub(lastcheck) > time.Duration(maxAge)*time.Second {
		return e.CheckForUpdates(false)
	}

	if len(e.table.Rows) > 0 {
		return EffectShowUpdates
	}
	if e.prefs.CheckResultsCacheSeconds != 0 {
		e.dialog = noUpdatesDialog(e.HasOptional())
		return EffectShowUpdates
	}
	return e.CheckForUpdates(false)
}

// CheckForUpdates launches a check-only worker run and opens a session
// for it. A failure to start either half is structural and dismiss-only.
func (e *Engine) CheckForUpdates(suppressAppleCheck bool) Effect {
	e.installs = nil
	e.removals = nil
	e.table = updates.Table{}
	e.optionalItems = nil
	e.optionalRows = nil

	if err := e.launcher.StartUpdateCheck(suppressAppleCheck); err != nil {
		log.Printf("Starting update check: %v", err)
		e.dialog = quitDialog("Update check failed",
			"There is a configuration problem with the managed software "+
				"installer. Could not start the update check process. "+
				"Contact your systems administrator.")
		return EffectShowUpdates
	}
	if err := e.sessions.Start(e.cfg.Status.SocketDir, e.cfg.Status.AcceptTimeout); err != nil {
		log.Printf("Opening status session: %v", err)
		e.dialog = quitDialog("Update check failed",
			"There is a configuration problem with the managed software "+
				"installer. Could not start the update check process. "+
				"Contact your systems administrator.")
		return EffectShowUpdates
	}
	e.workerMode = munki.ModeManualCheck
	return EffectShowStatus
}

// SessionEnded consumes the terminal result of a status session and
// decides the next screen.
func (e *Engine) SessionEnded(result status.Result) Effect {
	if e.runmode == RunmodeMunkiStatus || e.noConsoleUser() {
		// Status window only; nothing further to show.
		return EffectQuit
	}

	// The worker rewrites preferences during its run.
	e.reloadPrefs()

	title := "Update check failed"
	if e.workerMode == munki.ModeInstallWithNologout {
		title = "Install session failed"
	}

	switch result {
	case status.ResultDropped:
		e.dialog = quitDialog(title,
			"There is a configuration problem with the managed software "+
				"installer. The process ended unexpectedly. Contact your "+
				"systems administrator.")
		return EffectShowUpdates
	case status.ResultTimedOut:
		e.dialog = quitDialog(title,
			"There is a configuration problem with the managed software "+
				"installer. Could not start the process. Contact your "+
				"systems administrator.")
		return EffectShowUpdates
	}

	if e.workerMode == munki.ModeInstallWithNologout {
		// Install finished; our work here is done.
		return EffectQuit
	}

	e.workerMode = ""
	e.loadUpdates()
	if len(e.table.Rows) > 0 {
		return EffectShowUpdates
	}

	// No list of updates; the check result code explains why.
	switch e.prefs.LastCheckResult {
	case 1:
		// Worker believes updates exist; the window is already coming up.
	case -1:
		e.dialog = quitDialog("Cannot check for updates",
			"Managed Software Update cannot contact the update server at "+
				"this time.\nIf this situation continues, contact your "+
				"systems administrator.")
	case -2:
		e.dialog = quitDialog("Cannot check for updates",
			"Managed Software Update failed its preflight check.\nTry "+
				"again later.")
	default:
		e.dialog = noUpdatesDialog(e.HasOptional())
	}
	return EffectShowUpdates
}

// ConfirmInstall runs the pre-install gate: reject when other users are
// logged in, then pick the confirmation matching the required disruption.
func (e *Engine) ConfirmInstall() Effect {
	if len(e.table.Rows) == 0 {
		return EffectNone
	}
	if users, err := e.consoleUsers(); err == nil && len(users) > 1 {
		e.dialog = multipleUsersDialog()
		return EffectNone
	}
	switch {
	case e.table.RestartRequired:
		e.dialog = restartRequiredDialog()
	case e.table.LogoutRequired || e.prefs.InstallRequiresLogout:
		e.dialog = logoutRequiredDialog()
	default:
		e.dialog = logoutRecommendedDialog()
	}
	return EffectNone
}

// HandleOutcome consumes a dialog outcome. Outcomes carrying the ID of a
// superseded dialog are discarded.
func (e *Engine) HandleOutcome(id uuid.UUID, outcome Outcome) Effect {
	d := e.dialog
	if d == nil || d.ID != id {
		return EffectNone
	}
	e.dialog = nil

	switch d.Kind {
	case DialogQuit:
		return EffectQuit

	case DialogNoUpdates:
		switch outcome {
		case OutcomeAlternate:
			return EffectShowOptional
		case OutcomeOther:
			return e.CheckForUpdates(false)
		default:
			return EffectQuit
		}

	case DialogMultipleUsers, DialogBlockingApps:
		// Dismissal; the update list is unchanged.
		return EffectNone

	case DialogRestartRequired, DialogLogoutRequired:
		if outcome == OutcomeDefault {
			return e.beginInstall(true)
		}
		return EffectNone

	case DialogLogoutRecommended:
		switch outcome {
		case OutcomeDefault:
			return e.beginInstall(true)
		case OutcomeOther:
			return e.beginInstall(false)
		default:
			return EffectNone
		}

	case DialogFirmware:
		if outcome != OutcomeDefault {
			// One cancel aborts the whole acknowledgment sequence.
			return EffectNone
		}
		if len(d.fwQueue) > 0 {
			e.dialog = firmwareDialog(d.fwQueue[0], e.powerInfo().OnBattery(),
				d.fwQueue[1:], d.viaLogout)
			return EffectNone
		}
		return e.batteryGate(d.viaLogout)

	case DialogBattery:
		if outcome != OutcomeDefault {
			return EffectNone
		}
		return e.afterBattery(d.viaLogout)

	case DialogForcedLogout:
		if outcome == OutcomeAlternate {
			return e.launchLogoutInstall()
		}
		return EffectNone

	case DialogMandatoryPending:
		if outcome == OutcomeAlternate {
			return EffectQuit
		}
		// Show updates: the window is already up.
		return EffectNone

	case DialogRestartNow:
		if outcome == OutcomeDefault {
			return EffectAckRestart
		}
		return EffectNone
	}
	return EffectNone
}

// beginInstall runs the post-confirmation gates in order: firmware
// acknowledgments, battery, then (no-logout path only) blocking apps.
func (e *Engine) beginInstall(viaLogout bool) Effect {
	if alerts := firmwareAlerts(e.installs); len(alerts) > 0 {
		e.dialog = firmwareDialog(alerts[0], e.powerInfo().OnBattery(),
			alerts[1:], viaLogout)
		return EffectNone
	}
	return e.batteryGate(viaLogout)
}

func (e *Engine) batteryGate(viaLogout bool) Effect {
	if e.powerInfo().OnLowBattery() {
		e.dialog = batteryDialog(viaLogout)
		return EffectNone
	}
	return e.afterBattery(viaLogout)
}

func (e *Engine) afterBattery(viaLogout bool) Effect {
	if viaLogout {
		return e.launchLogoutInstall()
	}

	if apps := updates.CollectBlockingApps(e.installs); len(apps) > 0 {
		running, err := e.runningApps(apps)
		if err != nil {
			log.Printf("Checking blocking applications: %v", err)
		}
		if len(running) > 0 {
			e.dialog = blockingAppsDialog(running)
			return EffectNone
		}
	}

	if err := e.launcher.JustUpdate(); err != nil {
		log.Printf("Starting install session: %v", err)
		e.dialog = installSessionErrorDialog()
		return EffectNone
	}
	if err := e.sessions.Start(e.cfg.Status.SocketDir, e.cfg.Status.AcceptTimeout); err != nil {
		log.Printf("Opening status session: %v", err)
		e.dialog = installSessionErrorDialog()
		return EffectNone
	}
	e.workerMode = munki.ModeInstallWithNologout
	return EffectShowStatus
}

func (e *Engine) launchLogoutInstall() Effect {
	if err := e.launcher.LogoutAndUpdate(); err != nil {
		log.Printf("Starting logout install: %v", err)
		e.dialog = installSessionErrorDialog()
	}
	// The logout proceeds outside this process; the login window
	// instance picks up the status session.
	return EffectNone
}

func installSessionErrorDialog() *Dialog {
	return quitDialog("Cannot start installation session",
		"There is a configuration problem with the managed software "+
			"installer. Could not start the install session. Contact your "+
			"systems administrator.")
}

// ForcedLogoutWarning recomputes the deadline warning and shows it,
// retiring any dialog already up so warnings never stack.
// A nil logoutTime derives the deadline from the update list.
func (e *Engine) ForcedLogoutWarning(logoutTime *time.Time) Effect {
	var t time.Time
	if logoutTime != nil {
		t = *logoutTime
	} else if d, ok := updates.EarliestForceInstallDate(e.installs); ok {
		t = d
	}
	if t.IsZero() {
		return EffectNone
	}
	w := updates.ComputeWarning(t, e.now())
	log.Printf("Forced logout warning: %d minutes remaining", w.MinutesRemaining)
	e.dialog = forcedLogoutDialog(w)
	return EffectShowUpdates
}

// Later handles the "update later" choice: quit, unless a deadline is
// close enough that the user should be warned first.
func (e *Engine) Later() Effect {
	if !updates.ForcedSoon(e.installs, time.Hour, e.now()) {
		return EffectQuit
	}
	deadline, _ := updates.EarliestForceInstallDate(e.installs)
	overdue := !deadline.After(e.now())
	e.dialog = mandatoryPendingDialog(updates.FormatDeadline(deadline), overdue)
	return EffectNone
}

// UpdatesChanged reloads both lists after the worker rewrote InstallInfo
// while the window is open.
func (e *Engine) UpdatesChanged() Effect {
	e.loadUpdates()
	return EffectNone
}

// RestartAlert surfaces the worker's restart request; the session's reply
// stays blocked until the user confirms.
func (e *Engine) RestartAlert() Effect {
	e.dialog = restartNowDialog()
	return EffectNone
}

// ApplyOptionalChoices persists the user's optional-software selections
// and kicks off a recheck so the worker recomputes what is pending.
func (e *Engine) ApplyOptionalChoices(rows []updates.OptionalRow) Effect {
	installs, uninstalls := updates.OptionalChoices(rows)
	m := munki.SelfServeManifest{
		ManagedInstalls:   installs,
		ManagedUninstalls: uninstalls,
	}
	if err := munki.WriteSelfServeManifest(e.cfg.SelfServeManifestPath(), m); err != nil {
		log.Printf("Writing self-serve manifest: %v", err)
	}
	return e.CheckForUpdates(true)
}

func (e *Engine) reloadPrefs() {
	p, err := munki.ReadPrefs(e.cfg.PrefsPath())
	if err != nil {
		log.Printf("Reading preferences: %v", err)
		return
	}
	e.prefs = p
}

func (e *Engine) loadUpdates() {
	info, err := munki.ReadInstallInfo(e.cfg.InstallInfoPath())
	if err != nil {
		log.Printf("Reading install info: %v", err)
		return
	}
	e.installs = updates.Normalize(info.ManagedInstalls)
	e.removals = info.Removals
	e.table = updates.BuildUpdateTable(e.installs, e.removals, e.prefs.ShowRemovalDetail)

	e.optionalItems = updates.Normalize(info.OptionalInstalls)
	manifest, err := munki.ReadSelfServeManifest(e.cfg.SelfServeManifestPath())
	if err != nil {
		log.Printf("Reading self-serve manifest: %v", err)
	}
	e.optionalRows = updates.BuildOptionalRows(e.optionalItems, manifest.ManagedInstalls)
}

func (e *Engine) noConsoleUser() bool {
	users, err := e.consoleUsers()
	return err == nil && len(users) == 0
}
