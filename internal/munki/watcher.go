package munki

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// EventKind classifies watcher events.
type EventKind int

const (
	// EventUpdatesChanged means the worker rewrote InstallInfo while the
	// app is open.
	EventUpdatesChanged EventKind = iota
	// EventLogoutWarning means the worker announced a forced-logout
	// deadline via the drop file.
	EventLogoutWarning
)

// Event is one external notification.
type Event struct {
	Kind EventKind
	// LogoutTime is set for EventLogoutWarning when the drop file named a
	// deadline; nil means the receiver derives it from the update list.
	LogoutTime *time.Time
}

type logoutWarningFile struct {
	LogoutTime time.Time `yaml:"logout_time"`
}

// Watcher surfaces external changes to the managed-installs directory.
// Events are delivered on Events; a full channel drops the notification
// (the next rewrite will fire again).
type Watcher struct {
	fw     *fsnotify.Watcher
	events chan Event

	installInfoPath   string
	logoutWarningPath string
}

// Watch begins watching the directory containing the given install-info
// and logout-warning paths.
func Watch(installInfoPath, logoutWarningPath string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	dir := filepath.Dir(installInfoPath)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	w := &Watcher{
		fw:                fw,
		events:            make(chan Event, 8),
		installInfoPath:   installInfoPath,
		logoutWarningPath: logoutWarningPath,
	}
	go w.run()
	return w, nil
}

// Events is the stream of external notifications.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and closes the event stream.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) run() {
	defer close(w.events)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			switch ev.Name {
			case w.installInfoPath:
				w.emit(Event{Kind: EventUpdatesChanged})
			case w.logoutWarningPath:
				w.emit(w.logoutWarningEvent())
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
	}
}

func (w *Watcher) logoutWarningEvent() Event {
	ev := Event{Kind: EventLogoutWarning}
	data, err := os.ReadFile(w.logoutWarningPath)
	if err != nil {
		return ev
	}
	var f logoutWarningFile
	if err := yaml.Unmarshal(data, &f); err != nil || f.LogoutTime.IsZero() {
		return ev
	}
	t := f.LogoutTime
	ev.LogoutTime = &t
	return ev
}
