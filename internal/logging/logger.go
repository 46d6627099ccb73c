// Package logging provides structured logging for WorkLog.
// It wraps log/slog with a swappable package-level logger so the CLI can log
// to stderr while the daemon logs to its own file.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/manav03panchal/worklog/internal/errors"
)

var (
	defaultLogger *slog.Logger
	loggerMu      sync.RWMutex

	// Debug indicates if debug mode is enabled.
	Debug bool
)

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level // Minimum log level
	JSON      bool       // Use JSON output format
	Output    io.Writer  // Output destination (default: stderr)
	AddSource bool       // Include source file and line number
	Component string     // Tags every record, e.g. "daemon"
}

// DebugConfig returns a configuration suitable for debug mode.
func DebugConfig() Config {
	return Config{
		Level:     slog.LevelDebug,
		JSON:      true,
		Output:    os.Stderr,
		AddSource: true,
	}
}

// Init replaces the package logger.
func Init(cfg Config) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With(KeyComponent, cfg.Component)
	}

	loggerMu.Lock()
	defaultLogger = logger
	Debug = cfg.Level <= slog.LevelDebug
	loggerMu.Unlock()
}

// InitDebug initializes the logger in debug mode with JSON output.
func InitDebug() {
	Init(DebugConfig())
}

// Logger returns the current logger instance.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// Err renders err for a log record. Errors from a known subsystem are
// logged as a group carrying the message and the subsystem kind.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	kind := errors.Classify(err)
	if kind == errors.KindUnknown {
		return slog.String(KeyError, err.Error())
	}
	return slog.Group(KeyError,
		slog.String("msg", err.Error()),
		slog.String(KeyKind, string(kind)),
	)
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// DebugLog logs at DEBUG level. Named to avoid clashing with the Debug flag.
func DebugLog(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// InfoContext logs at INFO level, tagged with the cycle ID in ctx.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).ErrorContext(ctx, msg, args...)
}

// Common structured logging fields.
const (
	KeyCycle     = "cycle"
	KeyComponent = "component"
	KeyOperation = "op"
	KeyDuration  = "duration_ms"
	KeyError     = "error"
	KeyArtifact  = "artifact"
	KeyDir       = "dir"
	KeyPath      = "path"
	KeyDay       = "day"
	KeyInterval  = "interval"
	KeyState     = "state"
	KeyNext      = "next"
	KeyCount     = "count"
	KeyKind      = "kind"
)
