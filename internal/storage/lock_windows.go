//go:build windows

package storage

import (
	"os"
)

// Windows has no flock; the PID check in cleanStaleLock is the only guard.
func flockAcquire(file *os.File) error {
	return nil
}

func flockRelease(file *os.File) error {
	return nil
}

func isProcessRunning(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}
