package status

import (
	"bufio"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateListening
	StateConnected
	StateEnded
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateListening: "listening",
	StateConnected: "connected",
	StateEnded:     "ended",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Result is the terminal outcome of a session. The values match what the
// worker ecosystem has historically used for these conditions.
type Result int

const (
	ResultSuccess  Result = 0
	ResultDropped  Result = -1
	ResultTimedOut Result = -2
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultDropped:
		return "dropped"
	case ResultTimedOut:
		return "timed out"
	}
	return "unknown"
}

// Messages injected into the UI loop. Every UI-visible effect of a worker
// command crosses the goroutine boundary as one of these; the session
// never touches UI state directly.
type (
	// ActivateMsg asks the UI to take the foreground.
	ActivateMsg struct{}
	// WindowVisibleMsg shows or hides the status window.
	WindowVisibleMsg struct{ Visible bool }
	// TitleMsg sets the window title.
	TitleMsg struct{ Title string }
	// MessageMsg sets the primary status text.
	MessageMsg struct{ Text string }
	// DetailMsg sets the secondary status text.
	DetailMsg struct{ Text string }
	// ProgressMsg switches or advances the progress indicator.
	ProgressMsg struct{ Progress Progress }
	// StopButtonMsg carries the stop button's full visibility state.
	StopButtonMsg struct{ Hidden, Enabled bool }
	// RestartAlertMsg asks the UI to run the restart confirmation; the
	// session blocks until AckRestartAlert is called.
	RestartAlertMsg struct{}
	// SessionEndedMsg delivers the terminal result, exactly once per
	// session.
	SessionEndedMsg struct{ Result Result }
)

// Session owns one worker connection's lifecycle: listening, connected,
// ended. It runs its blocking accept/read loop on its own goroutine and
// reports everything to the UI through the send function.
type Session struct {
	endpoint *Endpoint
	send     func(tea.Msg)
	timeout  time.Duration

	// stopRequested latches once true and never resets within a session.
	stopRequested atomic.Bool
	restartAck    chan struct{}
	done          chan struct{}

	mu          sync.Mutex
	state       State
	stopHidden  bool
	stopEnabled bool
}

// NewSession wraps an open endpoint. The session owns the endpoint and
// closes it when the run ends.
func NewSession(endpoint *Endpoint, send func(tea.Msg), timeout time.Duration) *Session {
	return &Session{
		endpoint:    endpoint,
		send:        send,
		timeout:     timeout,
		restartAck:  make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopEnabled: true,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done closes when the session has ended and its result was delivered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// RequestStop latches the stop flag. The worker observes it by polling
// GETSTOPBUTTONSTATE and exits cooperatively; there is no forced-cancel
// verb.
func (s *Session) RequestStop() {
	s.stopRequested.Store(true)
}

// StopRequested reports the latched stop flag.
func (s *Session) StopRequested() bool {
	return s.stopRequested.Load()
}

// AckRestartAlert releases a read loop blocked in RESTARTALERT handling.
func (s *Session) AckRestartAlert() {
	select {
	case s.restartAck <- struct{}{}:
	default:
	}
}

// run executes the whole session lifecycle and delivers the terminal
// result exactly once. It must be called on a dedicated goroutine.
func (s *Session) run() {
	result := s.serve()
	s.endpoint.Close()
	s.setState(StateEnded)
	log.Printf("Status session ended: %s", result)
	s.send(SessionEndedMsg{Result: result})
	close(s.done)
}

func (s *Session) serve() Result {
	s.setState(StateListening)
	conn, err := s.endpoint.Accept(s.timeout)
	if err != nil {
		if err == ErrAcceptTimeout {
			log.Printf("Socket timed out before connection.")
			return ResultTimedOut
		}
		log.Printf("Socket error: %v", err)
		return ResultDropped
	}
	defer conn.Close()
	s.setState(StateConnected)

	// No deadline on the data phase: installs legitimately run for an
	// unbounded time, so a silent worker is not an error.
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			// Stream closed or broke without a QUIT; a trailing
			// fragment with no newline is discarded.
			if err != io.EOF {
				log.Printf("Socket error: %v", err)
			} else {
				log.Printf("Socket connection closed without QUIT message.")
			}
			return ResultDropped
		}

		cmd, ok := Decode(strings.TrimSuffix(line, "\n"))
		if !ok {
			continue
		}
		if cmd.Verb == VerbQuit {
			return ResultSuccess
		}
		if reply := s.apply(cmd); reply != "" {
			if _, err := io.WriteString(conn, reply); err != nil {
				return ResultDropped
			}
		}
	}
}

// apply executes one command and returns the synchronous reply, or "" for
// fire-and-forget verbs and anything unrecognized.
func (s *Session) apply(cmd Command) string {
	switch cmd.Verb {
	case VerbActivate:
		s.send(ActivateMsg{})
	case VerbHide:
		s.send(WindowVisibleMsg{Visible: false})
	case VerbShow:
		s.send(WindowVisibleMsg{Visible: true})
	case VerbTitle:
		s.send(TitleMsg{Title: cmd.Payload})
	case VerbMessage:
		s.send(MessageMsg{Text: cmd.Payload})
	case VerbDetail:
		s.send(DetailMsg{Text: cmd.Payload})
	case VerbPercent:
		if p, ok := ParsePercent(cmd.Payload); ok {
			s.send(ProgressMsg{Progress: p})
		}
	case VerbGetStopButtonState:
		if s.stopRequested.Load() {
			return "1\n"
		}
		return "0\n"
	case VerbHideStopButton:
		s.sendStopButton(func() { s.stopHidden = true })
	case VerbShowStopButton:
		s.sendStopButton(func() { s.stopHidden = false })
	case VerbEnableStopButton:
		s.sendStopButton(func() { s.stopEnabled = true })
	case VerbDisableStopButton:
		s.sendStopButton(func() { s.stopEnabled = false })
	case VerbRestartAlert:
		// The one place the protocol serializes a UI confirmation into
		// the wire response: block until the user acknowledges.
		s.send(RestartAlertMsg{})
		<-s.restartAck
		return "1\n"
	}
	return ""
}

func (s *Session) sendStopButton(mutate func()) {
	s.mu.Lock()
	mutate()
	msg := StopButtonMsg{Hidden: s.stopHidden, Enabled: s.stopEnabled}
	s.mu.Unlock()
	s.send(msg)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
