package status

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// socketPrefix keys the rendezvous path; the owning process id is appended
// so concurrently running instances never collide.
const socketPrefix = "com.googlecode.munki.munkistatus."

// ErrAcceptTimeout reports that no worker connected within the accept
// window.
var ErrAcceptTimeout = errors.New("status: accept timed out")

// Endpoint owns the unix-socket rendezvous for one session.
type Endpoint struct {
	path string
	ln   *net.UnixListener
}

// OpenEndpoint binds the rendezvous socket for the given process id,
// removing any stale socket a crashed instance left behind.
func OpenEndpoint(dir string, pid int) (*Endpoint, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s%d", socketPrefix, pid))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}
	return &Endpoint{path: path, ln: ln}, nil
}

// Accept waits for the worker to connect. Exactly one connection is
// accepted per session; the deadline applies only to this wait, never to
// the data phase.
func (e *Endpoint) Accept(timeout time.Duration) (net.Conn, error) {
	if err := e.ln.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	conn, err := e.ln.Accept()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, ErrAcceptTimeout
		}
		return nil, err
	}
	return conn, nil
}

// Path is the filesystem location of the rendezvous socket.
func (e *Endpoint) Path() string {
	return e.path
}

// Close tears down the listener and removes the socket artifact,
// best-effort.
func (e *Endpoint) Close() {
	e.ln.Close()
	os.Remove(e.path)
}
