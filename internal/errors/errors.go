// Package errors provides the error taxonomy for WorkLog.
// Failures are grouped by the subsystem that produced them: configuration
// persistence, capture, version-control archive and report generation.
// Each kind wraps its underlying cause so callers can use errors.Is/As.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrPermissionDenied  = errors.New("screen recording permission denied")
	ErrNoCaptureTool     = errors.New("no screen capture tool available")
	ErrInvalidTimeOfDay  = errors.New("invalid time of day")
	ErrInvalidInterval   = errors.New("interval must be a positive number of milliseconds")
	ErrInvalidQuality    = errors.New("jpeg quality must be between 0 and 100")
	ErrUnknownOption     = errors.New("unknown configuration option")
	ErrInvalidDay        = errors.New("invalid day")
	ErrDiskFull          = errors.New("disk full")
	ErrDaemonNotRunning  = errors.New("daemon is not running")
	ErrControlNotSupport = errors.New("daemon control is not supported on this platform")
	ErrJournalLocked     = errors.New("capture journal is locked by another process")
	ErrInvalidDirectory  = errors.New("invalid directory")
	ErrInvalidFileName   = errors.New("invalid file name")
)

// Kind identifies the subsystem an error originated in.
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindConfig  Kind = "config"
	KindCapture Kind = "capture"
	KindArchive Kind = "archive"
	KindReport  Kind = "report"
	KindUser    Kind = "user"
)

// ConfigError reports a failure to read or persist the configuration document.
// The in-memory configuration stays in effect when one of these is returned.
type ConfigError struct {
	Op    string // load, persist, watch
	Path  string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("config %s: %v", e.Op, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(op, path string, cause error) *ConfigError {
	return &ConfigError{Op: op, Path: path, Cause: cause}
}

// CaptureError reports a failed capture cycle: the capture device refused or
// failed, or the raw image could not be transcoded.
type CaptureError struct {
	Op    string // capture, transcode, rename, permission
	Path  string
	Cause error
}

func (e *CaptureError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("capture failed during %s of %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("capture failed during %s: %v", e.Op, e.Cause)
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}

// NewCaptureError creates a new CaptureError.
func NewCaptureError(op, path string, cause error) *CaptureError {
	return &CaptureError{Op: op, Path: path, Cause: cause}
}

// ArchiveError reports a version-control failure. The artifact it refers to
// is still on disk.
type ArchiveError struct {
	Op    string // init, add, commit
	Dir   string
	Cause error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s in %s: %v", e.Op, e.Dir, e.Cause)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

// NewArchiveError creates a new ArchiveError.
func NewArchiveError(op, dir string, cause error) *ArchiveError {
	return &ArchiveError{Op: op, Dir: dir, Cause: cause}
}

// ReportError reports an I/O failure while building or writing a report.
// No partial document is left behind when one of these is returned.
type ReportError struct {
	Op    string // list, render, write
	Path  string
	Cause error
}

func (e *ReportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("report %s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("report %s: %v", e.Op, e.Cause)
}

func (e *ReportError) Unwrap() error {
	return e.Cause
}

// NewReportError creates a new ReportError.
func NewReportError(op, path string, cause error) *ReportError {
	return &ReportError{Op: op, Path: path, Cause: cause}
}

// UserError represents an error that the user can fix.
// Examples: invalid option value, unknown key, unparseable day.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
	Cause      error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Field != "" && e.Value != "" {
		msg = fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// IsConfigError checks if an error is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsCaptureError checks if an error is a CaptureError.
func IsCaptureError(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce)
}

// IsArchiveError checks if an error is an ArchiveError.
func IsArchiveError(err error) bool {
	var ae *ArchiveError
	return errors.As(err, &ae)
}

// IsReportError checks if an error is a ReportError.
func IsReportError(err error) bool {
	var re *ReportError
	return errors.As(err, &re)
}

// IsUserError checks if an error is a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// AsCaptureError extracts a CaptureError from an error chain.
func AsCaptureError(err error) (*CaptureError, bool) {
	var ce *CaptureError
	ok := errors.As(err, &ce)
	return ce, ok
}

// AsArchiveError extracts an ArchiveError from an error chain.
func AsArchiveError(err error) (*ArchiveError, bool) {
	var ae *ArchiveError
	ok := errors.As(err, &ae)
	return ae, ok
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
