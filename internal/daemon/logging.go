package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultMaxLogSize is the size above which the hourly rotation job moves
// the log aside.
const DefaultMaxLogSize = 5 << 20

// LogFile is the daemon's log destination. It is an io.Writer that can be
// rotated while the daemon keeps writing.
type LogFile struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// OpenLogFile opens path for appending, creating it if needed.
func OpenLogFile(path string) (*LogFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := openAppend(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &LogFile{path: path, file: file}, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Path returns the log file path.
func (l *LogFile) Path() string {
	return l.path
}

func (l *LogFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return 0, os.ErrClosed
	}
	return l.file.Write(p)
}

// Close closes the log file.
func (l *LogFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Rotate moves the log to <path>.old and starts a new one when it exceeds
// maxSize bytes. It reports whether a rotation happened.
func (l *LogFile) Rotate(maxSize int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return false, nil
	}

	info, err := l.file.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() < maxSize {
		return false, nil
	}

	_ = l.file.Close()
	l.file = nil

	backup := l.path + ".old"
	_ = os.Remove(backup)
	if err := os.Rename(l.path, backup); err != nil {
		// Reopen the original so logging continues.
		if f, oerr := openAppend(l.path); oerr == nil {
			l.file = f
		}
		return false, err
	}

	file, err := openAppend(l.path)
	if err != nil {
		return true, err
	}
	l.file = file
	return true, nil
}
