package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gonchik/munki/internal/updates"
)

// DialogKind identifies which confirmation or alert is pending. Each kind
// has exactly one continuation in Engine.HandleOutcome.
type DialogKind int

const (
	DialogNone DialogKind = iota
	// DialogQuit is a dismiss-only alert whose only path is terminating
	// the app (transport failure, structural worker-start failure).
	DialogQuit
	DialogNoUpdates
	DialogMultipleUsers
	DialogRestartRequired
	DialogLogoutRequired
	DialogLogoutRecommended
	DialogFirmware
	DialogBattery
	DialogBlockingApps
	DialogForcedLogout
	DialogMandatoryPending
	// DialogRestartNow acknowledges the worker's restart alert; choosing
	// it unblocks the session's reply.
	DialogRestartNow
)

// Outcome is which button the user pressed, independent of dialog kind.
type Outcome int

const (
	OutcomeDefault Outcome = iota
	OutcomeAlternate
	OutcomeOther
)

// Button pairs a label with the outcome it produces.
type Button struct {
	Label   string
	Outcome Outcome
}

// Dialog is the single pending confirmation. A new dialog retires the
// previous one; an outcome carrying a stale ID is discarded.
type Dialog struct {
	ID      uuid.UUID
	Kind    DialogKind
	Title   string
	Body    string
	Buttons []Button
	Danger  bool

	// fwQueue holds the firmware alerts still to acknowledge after this
	// one; only set for DialogFirmware.
	fwQueue []firmwareAlert
	// viaLogout records which install path the gating sequence is on.
	viaLogout bool
}

// firmwareAlert is one firmware acknowledgment to present before install.
type firmwareAlert struct {
	Name string
	Text string
}

const defaultFirmwareAlertTag = "_DEFAULT_FIRMWARE_ALERT_TEXT_"

const defaultFirmwareAlertText = "Firmware will be updated on your computer. " +
	"Your computer's power cord must be connected and plugged into a working " +
	"power source. It may take several minutes for the update to complete. " +
	"Do not disturb or shut off the power on your computer during this update."

// firmwareAlerts collects the firmware acknowledgments the pending items
// require, substituting the default text where the item asks for it.
func firmwareAlerts(items []updates.Item) []firmwareAlert {
	var alerts []firmwareAlert
	for _, it := range items {
		if it.FirmwareAlertText == "" {
			continue
		}
		text := it.FirmwareAlertText
		if text == defaultFirmwareAlertTag {
			text = defaultFirmwareAlertText
		}
		alerts = append(alerts, firmwareAlert{Name: it.Label(), Text: text})
	}
	return alerts
}

func newDialog(kind DialogKind, title, body string, buttons ...Button) *Dialog {
	return &Dialog{
		ID:      uuid.New(),
		Kind:    kind,
		Title:   title,
		Body:    body,
		Buttons: buttons,
	}
}

func quitDialog(title, body string) *Dialog {
	d := newDialog(DialogQuit, title, body, Button{"Quit", OutcomeDefault})
	d.Danger = true
	return d
}

func noUpdatesDialog(hasOptional bool) *Dialog {
	buttons := []Button{{"Quit", OutcomeDefault}}
	if hasOptional {
		buttons = append(buttons, Button{"Optional software...", OutcomeAlternate})
	}
	buttons = append(buttons, Button{"Check again", OutcomeOther})
	return newDialog(DialogNoUpdates,
		"Your software is up to date.",
		"There is no new software for your computer at this time.",
		buttons...)
}

func multipleUsersDialog() *Dialog {
	return newDialog(DialogMultipleUsers,
		"Other users logged in",
		"There are other users logged into this computer.\n"+
			"Updating now could cause other users to lose their work.\n\n"+
			"Please try again later after the other users have logged out.",
		Button{"Cancel", OutcomeDefault})
}

func restartRequiredDialog() *Dialog {
	d := newDialog(DialogRestartRequired,
		"Restart Required",
		"A restart is required after updating. Please be patient as there "+
			"may be a short delay at the login window. Log out and update now?",
		Button{"Log out and update", OutcomeDefault},
		Button{"Cancel", OutcomeAlternate})
	d.Danger = true
	return d
}

func logoutRequiredDialog() *Dialog {
	return newDialog(DialogLogoutRequired,
		"Logout Required",
		"A logout is required before updating. Please be patient as there "+
			"may be a short delay at the login window. Log out and update now?",
		Button{"Log out and update", OutcomeDefault},
		Button{"Cancel", OutcomeAlternate})
}

func logoutRecommendedDialog() *Dialog {
	return newDialog(DialogLogoutRecommended,
		"Logout Recommended",
		"A logout is recommended before updating. Please be patient as "+
			"there may be a short delay at the login window. Log out and "+
			"update now?",
		Button{"Log out and update", OutcomeDefault},
		Button{"Cancel", OutcomeAlternate},
		Button{"Update without logging out", OutcomeOther})
}

// firmwareDialog presents one firmware acknowledgment. On battery power,
// the warning text is prefixed and Cancel becomes the safe default choice.
func firmwareDialog(alert firmwareAlert, onBattery bool, queue []firmwareAlert, viaLogout bool) *Dialog {
	text := alert.Text
	buttons := []Button{
		{"Continue", OutcomeDefault},
		{"Cancel", OutcomeAlternate},
	}
	if onBattery {
		text = "Your computer is not connected to a power source.\n\n" + text
		buttons = []Button{
			{"Cancel", OutcomeAlternate},
			{"Continue", OutcomeDefault},
		}
	}
	d := newDialog(DialogFirmware, alert.Name, text, buttons...)
	d.Danger = true
	d.fwQueue = queue
	d.viaLogout = viaLogout
	return d
}

// batteryDialog warns about low battery; Cancel is the default choice.
func batteryDialog(viaLogout bool) *Dialog {
	d := newDialog(DialogBattery,
		"Your computer is not connected to a power source.",
		"For best results, you should connect your computer to a power "+
			"source before updating. Are you sure you want to continue the "+
			"update?",
		Button{"Cancel", OutcomeAlternate},
		Button{"Continue", OutcomeDefault})
	d.viaLogout = viaLogout
	return d
}

func blockingAppsDialog(apps []string) *Dialog {
	return newDialog(DialogBlockingApps,
		"Conflicting applications running",
		"You must quit the following applications before proceeding with "+
			"installation:\n\n"+strings.Join(apps, "\n"),
		Button{"OK", OutcomeDefault})
}

func forcedLogoutDialog(w updates.Warning) *Dialog {
	buttons := []Button{{"Log out and update now", OutcomeAlternate}}
	if !w.SingleButton {
		buttons = []Button{
			{"OK", OutcomeDefault},
			{"Log out and update now", OutcomeAlternate},
		}
	}
	d := newDialog(DialogForcedLogout,
		"Forced Logout for Mandatory Install", w.Text(), buttons...)
	d.Danger = true
	return d
}

func mandatoryPendingDialog(deadline string, overdue bool) *Dialog {
	body := fmt.Sprintf("One or more updates must be installed by %s. "+
		"A logout may be forced if you wait too long to update.", deadline)
	if overdue {
		body = "One or more mandatory updates are overdue for installation. " +
			"A logout will be forced soon."
	}
	return newDialog(DialogMandatoryPending,
		"Mandatory Updates Pending", body,
		Button{"Show updates", OutcomeDefault},
		Button{"Update later", OutcomeAlternate})
}

func restartNowDialog() *Dialog {
	d := newDialog(DialogRestartNow,
		"Restart Required",
		"Installation is complete. A restart of your computer will begin "+
			"when you press Restart.",
		Button{"Restart", OutcomeDefault})
	d.Danger = true
	return d
}
