package status

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrSessionActive reports an attempt to start a session while one is
// still running. The previous session must fully end first.
var ErrSessionActive = errors.New("status: a session is already active")

// Supervisor owns session lifecycles. It runs each session's blocking
// accept/read loop on a dedicated goroutine so the UI loop never blocks,
// and marshals every UI-visible effect back as a tea.Msg through send.
type Supervisor struct {
	send func(tea.Msg)

	mu      sync.Mutex
	current *Session
}

// NewSupervisor creates a supervisor delivering messages through send.
func NewSupervisor(send func(tea.Msg)) *Supervisor {
	return &Supervisor{send: send}
}

// Start opens the rendezvous endpoint and begins a session. It returns
// ErrSessionActive if the previous session has not ended, or the endpoint
// error if the channel could not be opened (a structural failure, distinct
// from a transport one).
func (sv *Supervisor) Start(socketDir string, timeout time.Duration) error {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if sv.current != nil {
		select {
		case <-sv.current.Done():
		default:
			return ErrSessionActive
		}
	}

	ep, err := OpenEndpoint(socketDir, os.Getpid())
	if err != nil {
		return fmt.Errorf("opening status channel: %w", err)
	}
	log.Printf("Status session listening on %s", ep.Path())

	s := NewSession(ep, sv.send, timeout)
	sv.current = s
	go s.run()
	return nil
}

// RequestStop latches the active session's stop flag. A stop with no
// active session is a no-op.
func (sv *Supervisor) RequestStop() {
	if s := sv.session(); s != nil {
		s.RequestStop()
	}
}

// StopRequested reports the active session's latched stop flag.
func (sv *Supervisor) StopRequested() bool {
	if s := sv.session(); s != nil {
		return s.StopRequested()
	}
	return false
}

// AckRestartAlert releases a session blocked on RESTARTALERT.
func (sv *Supervisor) AckRestartAlert() {
	if s := sv.session(); s != nil {
		s.AckRestartAlert()
	}
}

// SocketPath returns the current session's rendezvous path, or "" when no
// session has been started.
func (sv *Supervisor) SocketPath() string {
	if s := sv.session(); s != nil {
		return s.endpoint.Path()
	}
	return ""
}

// Active reports whether a session is currently live.
func (sv *Supervisor) Active() bool {
	s := sv.session()
	if s == nil {
		return false
	}
	select {
	case <-s.Done():
		return false
	default:
		return true
	}
}

func (sv *Supervisor) session() *Session {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.current
}
