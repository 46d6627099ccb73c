package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a type for context keys used by this package.
type contextKey int

const (
	cycleIDKey contextKey = iota
)

// NewCycleID creates a new identifier for one capture or report cycle.
// IDs are UUIDv7 so they sort by creation time.
func NewCycleID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// WithCycleID returns a new context carrying the given cycle ID.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, cycleIDKey, cycleID)
}

// NewCycleContext derives a context with a freshly generated cycle ID.
func NewCycleContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return WithCycleID(parent, NewCycleID())
}

// CycleIDFromContext extracts the cycle ID from the context.
// Returns empty string if none is set.
func CycleIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(cycleIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns a logger tagged with the cycle ID from ctx.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if id := CycleIDFromContext(ctx); id != "" {
		logger = logger.With(KeyCycle, id)
	}
	return logger
}
