package munki

import (
	"fmt"
	"log"
	"os/exec"
)

// Worker run modes. The mode tells the privileged worker what it is
// authorized to do; the app never installs anything itself.
const (
	ModeManualCheck         = "manualcheck"
	ModeInstallWithNologout = "installwithnologout"
	ModeLogoutInstall       = "logoutinstall"
)

// Launcher starts the privileged worker process.
type Launcher struct {
	// Binary is the worker executable path.
	Binary string
}

// StartUpdateCheck launches a check-only run.
func (l Launcher) StartUpdateCheck(suppressAppleCheck bool) error {
	args := []string{"--mode", ModeManualCheck}
	if suppressAppleCheck {
		args = append(args, "--no-apple-updates")
	}
	return l.start(args)
}

// JustUpdate launches an install run that does not log the user out.
func (l Launcher) JustUpdate() error {
	return l.start([]string{"--mode", ModeInstallWithNologout})
}

// LogoutAndUpdate launches the logout-then-install run.
func (l Launcher) LogoutAndUpdate() error {
	return l.start([]string{"--mode", ModeLogoutInstall})
}

func (l Launcher) start(args []string) error {
	bin := l.Binary
	if bin == "" {
		bin = "managedsoftwareupdate"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("worker binary: %w", err)
	}
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting worker: %w", err)
	}
	log.Printf("Launched worker pid=%d args=%v", cmd.Process.Pid, args)
	go func() {
		// Reap; the session result is what matters, not the exit code.
		_ = cmd.Wait()
	}()
	return nil
}
