package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/manav03panchal/worklog/internal/errors"
)

var (
	minFreeSpace        atomic.Uint64
	minFreeSpaceWarning atomic.Uint64
)

func init() {
	SetThresholds(10*1024*1024, 50*1024*1024)
}

// SetThresholds sets the free-space floor below which writes are refused and
// the level below which a warning is produced.
func SetThresholds(floor, warn uint64) {
	minFreeSpace.Store(floor)
	minFreeSpaceWarning.Store(warn)
}

// DiskSpaceInfo contains information about available disk space.
type DiskSpaceInfo struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
}

// FreePercent returns the percentage of free space.
func (d *DiskSpaceInfo) FreePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.FreeBytes) / float64(d.TotalBytes) * 100
}

// CheckDiskSpace returns an ErrDiskFull error when the volume holding path
// has less free space than the configured floor. Unknown space is not an error.
func CheckDiskSpace(path string) error {
	info, err := GetDiskSpace(path)
	if err != nil {
		return nil
	}

	floor := minFreeSpace.Load()
	if info.FreeBytes < floor {
		return fmt.Errorf("%w: %d MB free, need at least %d MB",
			errors.ErrDiskFull, info.FreeBytes/(1024*1024), floor/(1024*1024))
	}
	return nil
}

// CheckDiskSpaceWarning returns a warning message if space is low.
func CheckDiskSpaceWarning(path string) string {
	info, err := GetDiskSpace(path)
	if err != nil {
		return ""
	}
	if info.FreeBytes < minFreeSpaceWarning.Load() {
		return fmt.Sprintf("low disk space (%d MB free)", info.FreeBytes/(1024*1024))
	}
	return ""
}

// existingAncestor walks up from path to the first directory that exists.
func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

func diskFull(op string, err error) error {
	if isDiskFullError(err) {
		return fmt.Errorf("%s: %w", op, errors.ErrDiskFull)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SafeWrite writes data to path atomically: the bytes go to a hidden temp
// file in the same directory which is synced and then renamed over path.
// Readers never observe a partially written file.
func SafeWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := CheckDiskSpace(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".worklog-*.tmp")
	if err != nil {
		return diskFull("create temp file", err)
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return diskFull("write", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return diskFull("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	ok = true
	return nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	if err := CheckDiskSpace(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return diskFull("mkdir", err)
	}
	return nil
}
