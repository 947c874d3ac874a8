package updates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func forcedItem(name string, deadline time.Time) Item {
	return Item{Name: name, ForceInstallAfterDate: &deadline}
}

func TestNormalizeAlphabetizesRegularItems(t *testing.T) {
	items := []Item{
		{Name: "zsh-config"},
		{Name: "emacs", DisplayName: "Aquamacs"},
		{Name: "bbedit", DisplayName: "BBEdit"},
	}

	got := Normalize(items)

	names := make([]string, len(got))
	for i, it := range got {
		names[i] = it.Label()
	}
	assert.Equal(t, []string{"Aquamacs", "BBEdit", "zsh-config"}, names)
}

func TestNormalizeIsCaseInsensitive(t *testing.T) {
	items := []Item{
		{Name: "iTerm"},
		{Name: "Inkscape"},
		{Name: "firefox"},
		{Name: "Audacity"},
	}

	got := Normalize(items)

	names := make([]string, len(got))
	for i, it := range got {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"Audacity", "firefox", "Inkscape", "iTerm"}, names)
}

func TestNormalizeForcedItemsFirstSoonestDeadlineFirst(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Name: "plain-b"},
		forcedItem("forced-late", now.Add(72*time.Hour)),
		{Name: "plain-a"},
		forcedItem("forced-soon", now.Add(1*time.Hour)),
		forcedItem("forced-mid", now.Add(24*time.Hour)),
	}

	got := Normalize(items)

	names := make([]string, len(got))
	for i, it := range got {
		names[i] = it.Name
	}
	assert.Equal(t, []string{
		"forced-soon", "forced-mid", "forced-late", "plain-a", "plain-b",
	}, names)
}

func TestNormalizeEveryForcedItemPrecedesEveryRegularItem(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Name: "r1"}, forcedItem("f1", now.Add(time.Hour)),
		{Name: "r2"}, forcedItem("f2", now.Add(2*time.Hour)),
		{Name: "r3"},
	}

	got := Normalize(items)

	lastForced := -1
	firstRegular := len(got)
	for i, it := range got {
		if it.Forced() {
			lastForced = i
		} else if i < firstRegular {
			firstRegular = i
		}
	}
	assert.Less(t, lastForced, firstRegular,
		"forced items must all precede regular items")

	// The forced prefix is sorted by ascending deadline.
	for i := 1; i <= lastForced; i++ {
		assert.False(t, got[i].ForceInstallAfterDate.Before(*got[i-1].ForceInstallAfterDate))
	}
}

func TestNormalizeEmptyList(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}
