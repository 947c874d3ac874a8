package updates

import (
	"fmt"
	"time"
)

// WarningTier selects which forced-logout message applies at a moment in
// time.
type WarningTier int

const (
	TierDeadline WarningTier = iota // more than 55 minutes out
	TierMinutes                     // between 1 and 55 minutes
	TierImminent                    // under a minute, or overdue
)

// Warning is the forced-logout state recomputed at notification time. It
// is derived from the wall clock on every notification and never cached
// across notifications.
type Warning struct {
	LogoutTime       time.Time
	MinutesRemaining int
	Tier             WarningTier
	// SingleButton: with five minutes or less remaining, only the
	// "log out now" affordance is offered.
	SingleButton bool
}

// ComputeWarning derives the message tier for a deadline at the given
// moment.
func ComputeWarning(logoutTime, now time.Time) Warning {
	mins := int(logoutTime.Sub(now).Minutes())
	w := Warning{
		LogoutTime:       logoutTime,
		MinutesRemaining: mins,
		SingleButton:     mins <= 5,
	}
	switch {
	case mins > 55:
		w.Tier = TierDeadline
	case mins > 0:
		w.Tier = TierMinutes
	default:
		w.Tier = TierImminent
	}
	return w
}

// Text returns the informational text for the warning's tier.
func (w Warning) Text() string {
	const moreText = "\nAll pending updates will be installed. Unsaved work will be lost.\n" +
		"You may avoid the forced logout by logging out now."
	switch w.Tier {
	case TierDeadline:
		return fmt.Sprintf("A logout will be forced at approximately %s.",
			w.LogoutTime.Local().Format(deadlineFormat)) + moreText
	case TierMinutes:
		return fmt.Sprintf("A logout will be forced in less than %d minutes.",
			w.MinutesRemaining) + moreText
	default:
		return "A logout will be forced in less than a minute.\n" +
			"All pending updates will be installed. Unsaved work will be lost."
	}
}

// EarliestForceInstallDate returns the soonest deadline carried by any
// item.
func EarliestForceInstallDate(items []Item) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, it := range items {
		if !it.Forced() {
			continue
		}
		if !found || it.ForceInstallAfterDate.Before(earliest) {
			earliest = *it.ForceInstallAfterDate
			found = true
		}
	}
	return earliest, found
}

// ForcedSoon reports whether any item's deadline falls within the horizon.
func ForcedSoon(items []Item, horizon time.Duration, now time.Time) bool {
	deadline, ok := EarliestForceInstallDate(items)
	if !ok {
		return false
	}
	return deadline.Before(now.Add(horizon))
}
