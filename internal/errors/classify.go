package errors

import (
	"errors"
	"syscall"
)

// Classify determines which subsystem an error came from.
// The outermost typed error in the chain wins.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *CaptureError:
			return KindCapture
		case *ArchiveError:
			return KindArchive
		case *ReportError:
			return KindReport
		case *ConfigError:
			return KindConfig
		case *UserError:
			return KindUser
		}
	}

	return KindUnknown
}

// IsDiskFull reports whether err indicates the disk has no space left.
func IsDiskFull(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDiskFull) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ENOSPC
	}
	return false
}

// IsPermission reports whether err is a permission failure, either the
// screen-recording sentinel or a filesystem permission error.
func IsPermission(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EACCES || errno == syscall.EPERM
	}
	return false
}
