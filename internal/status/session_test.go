package status

import (
	"bufio"
	"net"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const testTimeout = 5 * time.Second

// startTestSession runs a supervisor whose messages land on the returned
// channel, with a session already listening.
func startTestSession(t *testing.T) (*Supervisor, <-chan tea.Msg) {
	t.Helper()
	msgs := make(chan tea.Msg, 64)
	sv := NewSupervisor(func(m tea.Msg) { msgs <- m })
	if err := sv.Start(t.TempDir(), testTimeout); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	return sv, msgs
}

func dial(t *testing.T, sv *Supervisor) net.Conn {
	t.Helper()
	var conn net.Conn
	var err error
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		conn, err = net.Dial("unix", sv.SocketPath())
		if err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("dial error: %v", err)
	return nil
}

func send(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write error: %v", err)
	}
}

// awaitMsg pulls messages until one matches, failing on timeout. Unmatched
// messages are discarded.
func awaitMsg(t *testing.T, msgs <-chan tea.Msg, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	for {
		select {
		case m := <-msgs:
			if match(m) {
				return m
			}
		case <-time.After(testTimeout):
			t.Fatal("timed out waiting for message")
			return nil
		}
	}
}

func awaitResult(t *testing.T, msgs <-chan tea.Msg) Result {
	t.Helper()
	m := awaitMsg(t, msgs, func(m tea.Msg) bool {
		_, ok := m.(SessionEndedMsg)
		return ok
	})
	return m.(SessionEndedMsg).Result
}

func TestSessionQuitEndsWithSuccess(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()

	send(t, conn, "MESSAGE: Installing...")
	send(t, conn, "QUIT: ")

	if got := awaitResult(t, msgs); got != ResultSuccess {
		t.Errorf("result = %v, want success", got)
	}
}

func TestSessionDroppedWithoutQuit(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)

	send(t, conn, "MESSAGE: Installing...")
	conn.Close()

	if got := awaitResult(t, msgs); got != ResultDropped {
		t.Errorf("result = %v, want dropped", got)
	}
}

func TestSessionAcceptTimeout(t *testing.T) {
	msgs := make(chan tea.Msg, 8)
	sv := NewSupervisor(func(m tea.Msg) { msgs <- m })
	if err := sv.Start(t.TempDir(), 50*time.Millisecond); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	if got := awaitResult(t, msgs); got != ResultTimedOut {
		t.Errorf("result = %v, want timed out", got)
	}
}

func TestSessionAppliesDisplayCommands(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()

	send(t, conn, "TITLE: Managed Software Update")
	send(t, conn, "MESSAGE: Installing Firefox...")
	send(t, conn, "DETAIL: Package 1 of 3")
	send(t, conn, "PERCENT: 33.5")

	m := awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(TitleMsg); return ok })
	if m.(TitleMsg).Title != "Managed Software Update" {
		t.Errorf("Title = %q", m.(TitleMsg).Title)
	}
	m = awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(MessageMsg); return ok })
	if m.(MessageMsg).Text != "Installing Firefox..." {
		t.Errorf("Message = %q", m.(MessageMsg).Text)
	}
	m = awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(DetailMsg); return ok })
	if m.(DetailMsg).Text != "Package 1 of 3" {
		t.Errorf("Detail = %q", m.(DetailMsg).Text)
	}
	m = awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(ProgressMsg); return ok })
	p := m.(ProgressMsg).Progress
	if p.Indeterminate || p.Percent != 33.5 {
		t.Errorf("Progress = %+v", p)
	}
}

func TestSessionPercentModes(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()

	send(t, conn, "PERCENT: -1")
	m := awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(ProgressMsg); return ok })
	if !m.(ProgressMsg).Progress.Indeterminate {
		t.Error("negative percent should select indeterminate mode")
	}

	send(t, conn, "PERCENT: 250")
	m = awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(ProgressMsg); return ok })
	p := m.(ProgressMsg).Progress
	if p.Indeterminate || p.Percent != 100 {
		t.Errorf("out-of-range percent should clamp to 100, got %+v", p)
	}
}

func TestStopButtonLatch(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()
	r := bufio.NewReader(conn)

	send(t, conn, "GETSTOPBUTTONSTATE: ")
	reply, err := r.ReadString('\n')
	if err != nil || reply != "0\n" {
		t.Fatalf("initial stop state = %q (err %v), want 0", reply, err)
	}

	sv.RequestStop()

	send(t, conn, "GETSTOPBUTTONSTATE: ")
	reply, err = r.ReadString('\n')
	if err != nil || reply != "1\n" {
		t.Fatalf("latched stop state = %q (err %v), want 1", reply, err)
	}

	// The latch never reverts within a session.
	send(t, conn, "GETSTOPBUTTONSTATE: ")
	reply, err = r.ReadString('\n')
	if err != nil || reply != "1\n" {
		t.Fatalf("stop state reverted: %q (err %v)", reply, err)
	}

	send(t, conn, "QUIT: ")
	if got := awaitResult(t, msgs); got != ResultSuccess {
		t.Errorf("result = %v, want success", got)
	}
}

func TestStopButtonVisibilityCommands(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()

	send(t, conn, "HIDESTOPBUTTON: ")
	m := awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(StopButtonMsg); return ok })
	if sb := m.(StopButtonMsg); !sb.Hidden || !sb.Enabled {
		t.Errorf("after HIDESTOPBUTTON: %+v", sb)
	}

	send(t, conn, "DISABLESTOPBUTTON: ")
	m = awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(StopButtonMsg); return ok })
	if sb := m.(StopButtonMsg); !sb.Hidden || sb.Enabled {
		t.Errorf("after DISABLESTOPBUTTON: %+v", sb)
	}

	send(t, conn, "SHOWSTOPBUTTON: ")
	m = awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(StopButtonMsg); return ok })
	if sb := m.(StopButtonMsg); sb.Hidden || sb.Enabled {
		t.Errorf("after SHOWSTOPBUTTON: %+v", sb)
	}
}

func TestRestartAlertBlocksUntilAcknowledged(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()
	r := bufio.NewReader(conn)

	send(t, conn, "RESTARTALERT: ")
	awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(RestartAlertMsg); return ok })

	// No reply arrives before the acknowledgment.
	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, err := r.ReadString('\n'); err == nil {
		t.Fatal("reply arrived before the alert was acknowledged")
	}
	conn.SetReadDeadline(time.Time{})

	sv.AckRestartAlert()

	reply, err := r.ReadString('\n')
	if err != nil || reply != "1\n" {
		t.Fatalf("restart alert reply = %q (err %v), want 1", reply, err)
	}
}

func TestUnknownAndMalformedLinesIgnored(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()

	send(t, conn, "FROBNICATE: all the things")
	send(t, conn, "not a protocol line")
	send(t, conn, "MESSAGE: still alive")
	send(t, conn, "QUIT: ")

	m := awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(MessageMsg); return ok })
	if m.(MessageMsg).Text != "still alive" {
		t.Errorf("Message = %q", m.(MessageMsg).Text)
	}
	if got := awaitResult(t, msgs); got != ResultSuccess {
		t.Errorf("result = %v, want success", got)
	}
}

func TestSplitWritesReassembleIntoLines(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	defer conn.Close()

	// A command split across writes must decode once the newline lands.
	if _, err := conn.Write([]byte("MESSA")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := conn.Write([]byte("GE: partial write\nQUIT: \n")); err != nil {
		t.Fatal(err)
	}

	m := awaitMsg(t, msgs, func(m tea.Msg) bool { _, ok := m.(MessageMsg); return ok })
	if m.(MessageMsg).Text != "partial write" {
		t.Errorf("Message = %q", m.(MessageMsg).Text)
	}
	if got := awaitResult(t, msgs); got != ResultSuccess {
		t.Errorf("result = %v, want success", got)
	}
}

func TestStartWhileActiveIsRejected(t *testing.T) {
	sv, _ := startTestSession(t)

	if err := sv.Start(t.TempDir(), testTimeout); err != ErrSessionActive {
		t.Errorf("second Start error = %v, want ErrSessionActive", err)
	}
}

func TestStartAfterSessionEndSucceeds(t *testing.T) {
	sv, msgs := startTestSession(t)
	conn := dial(t, sv)
	send(t, conn, "QUIT: ")
	conn.Close()
	awaitResult(t, msgs)

	if err := sv.Start(t.TempDir(), testTimeout); err != nil {
		t.Errorf("Start after end error: %v", err)
	}
}

func TestSocketRemovedAfterSessionEnd(t *testing.T) {
	sv, msgs := startTestSession(t)
	path := sv.SocketPath()
	conn := dial(t, sv)
	send(t, conn, "QUIT: ")
	conn.Close()
	awaitResult(t, msgs)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket artifact should be removed after session end, stat err = %v", err)
	}
}
