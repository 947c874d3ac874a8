package status

import (
	"net"
	"os"
	"testing"
	"time"
)

func TestOpenEndpointRemovesStaleSocket(t *testing.T) {
	dir := t.TempDir()

	ep1, err := OpenEndpoint(dir, 1234)
	if err != nil {
		t.Fatalf("OpenEndpoint error: %v", err)
	}
	stale := ep1.Path()
	// Simulate a crash: listener gone, socket file left behind.
	ep1.ln.Close()
	if err := os.WriteFile(stale, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ep2, err := OpenEndpoint(dir, 1234)
	if err != nil {
		t.Fatalf("OpenEndpoint over stale socket error: %v", err)
	}
	defer ep2.Close()

	if ep2.Path() != stale {
		t.Errorf("path changed: %q vs %q", ep2.Path(), stale)
	}
}

func TestEndpointPathIncludesPID(t *testing.T) {
	dir := t.TempDir()
	ep, err := OpenEndpoint(dir, 99)
	if err != nil {
		t.Fatalf("OpenEndpoint error: %v", err)
	}
	defer ep.Close()

	ep2, err := OpenEndpoint(dir, 100)
	if err != nil {
		t.Fatalf("concurrent instance with different pid should not collide: %v", err)
	}
	ep2.Close()

	if ep.Path() == ep2.Path() {
		t.Error("paths for different pids must differ")
	}
}

func TestAcceptTimeout(t *testing.T) {
	ep, err := OpenEndpoint(t.TempDir(), os.Getpid())
	if err != nil {
		t.Fatalf("OpenEndpoint error: %v", err)
	}
	defer ep.Close()

	start := time.Now()
	_, err = ep.Accept(50 * time.Millisecond)
	if err != ErrAcceptTimeout {
		t.Fatalf("Accept error = %v, want ErrAcceptTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Accept returned after %v, before the deadline", elapsed)
	}
}

func TestAcceptConnection(t *testing.T) {
	ep, err := OpenEndpoint(t.TempDir(), os.Getpid())
	if err != nil {
		t.Fatalf("OpenEndpoint error: %v", err)
	}
	defer ep.Close()

	go func() {
		conn, err := net.Dial("unix", ep.Path())
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := ep.Accept(2 * time.Second)
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	conn.Close()
}

func TestCloseRemovesSocketFile(t *testing.T) {
	ep, err := OpenEndpoint(t.TempDir(), os.Getpid())
	if err != nil {
		t.Fatalf("OpenEndpoint error: %v", err)
	}
	path := ep.Path()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("socket file should exist while listening: %v", err)
	}

	ep.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket file should be removed on close, stat err = %v", err)
	}
}
