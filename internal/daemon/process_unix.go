//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

// IsProcessRunning checks if a process with the given PID is running.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Unix; signal 0 checks existence only.
	return process.Signal(syscall.Signal(0)) == nil
}

func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
