package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gonchik/munki/internal/app"
	"github.com/gonchik/munki/internal/config"
	"github.com/gonchik/munki/internal/munki"
	"github.com/gonchik/munki/internal/status"
)

func main() {
	configPath := flag.String("config", "/etc/managed-software-update.yaml", "Config file path")
	mode := flag.String("mode", "", "Run mode (Normal or MunkiStatus)")
	socketDir := flag.String("socket-dir", "", "Override the status socket directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *socketDir != "" {
		cfg.Status.SocketDir = *socketDir
	}

	// A tea.Program's Send is safe from any goroutine; the supervisor and
	// watcher marshal every UI mutation through it.
	sn := &sender{}
	supervisor := status.NewSupervisor(sn.send)
	launcher := munki.Launcher{Binary: cfg.Paths.WorkerBinary}
	engine := app.NewEngine(cfg, launcher, supervisor)
	engine.SetRunmode(runmode(*mode))

	watcher, err := munki.Watch(cfg.InstallInfoPath(), cfg.LogoutWarningPath())
	if err != nil {
		log.Printf("Watching %s: %v", cfg.Paths.ManagedInstallsDir, err)
	} else {
		defer watcher.Close()
		go func() {
			for ev := range watcher.Events() {
				sn.send(app.WatcherEventMsg{Event: ev})
			}
		}()
	}

	m := app.New(cfg, engine, supervisor)
	program := tea.NewProgram(m, tea.WithAltScreen())
	sn.set(program)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sender hands messages to the program once it exists; anything produced
// before then is dropped, which only affects cosmetic early messages.
type sender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *sender) set(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *sender) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// runmode resolves the run mode from the flag, the environment, or the
// console state: with no console user we show the status window only.
func runmode(flagMode string) string {
	if flagMode != "" {
		return flagMode
	}
	if env := os.Getenv("ManagedSoftwareUpdateMode"); env != "" {
		return env
	}
	users, err := munki.ConsoleUsers()
	if err == nil && len(users) == 0 {
		return app.RunmodeMunkiStatus
	}
	return ""
}
