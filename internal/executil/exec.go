// Package executil runs external commands: git for the archive, the platform
// screenshot tools and the desktop notifiers.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const maxOutputLen = 500

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// RunDir executes a command in a specific directory.
	RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error)
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.RunDir(ctx, "", cmd, args...)
}

// RunDir executes a command in dir (empty means inherit cwd). On failure the
// error carries the first bytes of the command's output so git and capture
// tool messages reach the logs.
func (e *RealExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	if dir != "" {
		c.Dir = dir
	}
	out, err := c.CombinedOutput()
	if err != nil {
		if msg := summarize(out); msg != "" {
			return out, fmt.Errorf("exec %s: %s: %w", cmd, msg, err)
		}
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// summarize trims output to a single bounded line for error messages.
func summarize(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) > maxOutputLen {
		out = out[:maxOutputLen]
	}
	return strings.Join(strings.Fields(string(out)), " ")
}

// LookPath reports whether cmd is on PATH.
func LookPath(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
