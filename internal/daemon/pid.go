// Package daemon runs WorkLog in the background: it wires the recorder, the
// daily report and the config watcher together and manages the process
// (PID file, state file, log file, control signals, login service).
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/worklog/internal/errors"
)

const (
	// AppName is the application name used for runtime directories.
	AppName = "worklog"
	// PIDFileName is the PID file name.
	PIDFileName = "worklog.pid"
	// StateFileName is the status snapshot written by the running daemon.
	StateFileName = "daemon.json"
	// LogFileName is the daemon log file name.
	LogFileName = "daemon.log"
)

// Errors
var (
	ErrNotRunning     = errors.ErrDaemonNotRunning
	ErrAlreadyRunning = errors.New("daemon is already running")
)

// DefaultDir returns the directory holding the PID, state and log files.
func DefaultDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// PIDFile manages the daemon PID file.
type PIDFile struct {
	path string
}

// NewPIDFile creates a PID file manager in dir.
func NewPIDFile(dir string) *PIDFile {
	return &PIDFile{path: filepath.Join(dir, PIDFileName)}
}

// Write writes the current process PID to the file.
func (p *PIDFile) Write() error {
	return p.WritePID(os.Getpid())
}

// WritePID writes a specific PID to the file.
func (p *PIDFile) WritePID(pid int) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read reads the PID from the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// Remove removes the PID file.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning checks if the daemon is currently running.
func (p *PIDFile) IsRunning() bool {
	return p.RunningPID() > 0
}

// RunningPID returns the PID if the daemon is running, or 0 if not.
func (p *PIDFile) RunningPID() int {
	pid, err := p.Read()
	if err != nil || !IsProcessRunning(pid) {
		return 0
	}
	return pid
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}
