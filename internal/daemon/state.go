package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/manav03panchal/worklog/internal/storage"
)

// State is the snapshot the running daemon publishes for `daemon status`
// and the report server.
type State struct {
	PID         int             `json:"pid"`
	StartedAt   time.Time       `json:"started_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Recording   bool            `json:"recording"`
	IntervalMs  int64           `json:"interval_ms"`
	LastCapture time.Time       `json:"last_capture,omitzero"`
	LastError   string          `json:"last_error,omitempty"`
	NextReport  time.Time       `json:"next_report,omitzero"`
	Root        string          `json:"root"`
	Health      *HealthStatus   `json:"health,omitempty"`
	Metrics     MetricsSnapshot `json:"metrics"`
}

// StateFile reads and writes the daemon state snapshot.
type StateFile struct {
	path string
}

// NewStateFile creates a state file manager in dir.
func NewStateFile(dir string) *StateFile {
	return &StateFile{path: filepath.Join(dir, StateFileName)}
}

// Path returns the state file path.
func (s *StateFile) Path() string {
	return s.path
}

// Write replaces the snapshot atomically.
func (s *StateFile) Write(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode daemon state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return storage.SafeWrite(s.path, data, 0o644)
}

// Read loads the snapshot.
func (s *StateFile) Read() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode daemon state: %w", err)
	}
	return &st, nil
}

// Remove deletes the snapshot.
func (s *StateFile) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
