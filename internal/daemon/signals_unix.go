//go:build !windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

func controlSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1, syscall.SIGUSR2}
}

func controlFor(sig os.Signal) (Control, bool) {
	switch sig {
	case syscall.SIGUSR1:
		return ControlToggle, true
	case syscall.SIGUSR2:
		return ControlReport, true
	}
	return 0, false
}

func signalFor(c Control) (os.Signal, error) {
	switch c {
	case ControlToggle:
		return syscall.SIGUSR1, nil
	case ControlReport:
		return syscall.SIGUSR2, nil
	}
	return nil, fmt.Errorf("unknown control %d", c)
}

// SendControl delivers a control request to the daemon with the given PID.
func SendControl(pid int, c Control) error {
	sig, err := signalFor(c)
	if err != nil {
		return err
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(sig); err != nil {
		return fmt.Errorf("failed to send %s to daemon: %w", c, err)
	}
	return nil
}
