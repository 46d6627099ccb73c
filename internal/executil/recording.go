package executil

import (
	"context"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// String renders the command line, e.g. "git add -- a.png".
func (c RecordedCommand) String() string {
	return strings.Join(append([]string{c.Cmd}, c.Args...), " ")
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command names to their output.
	Outputs map[string][]byte

	// Errors maps command names to their error.
	Errors map[string]error

	// Hook, when set, runs for every command after it is recorded. A non-nil
	// error from Hook overrides Errors.
	Hook func(dir, cmd string, args []string) error
}

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record("", cmd, args...)
}

// RunDir records the command with directory and returns configured output/error.
func (e *RecordingExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	return e.record(dir, cmd, args...)
}

func (e *RecordingExecutor) record(dir, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	e.Commands = append(e.Commands, RecordedCommand{Dir: dir, Cmd: cmd, Args: args})

	var out []byte
	var err error
	if e.Outputs != nil {
		out = e.Outputs[cmd]
	}
	if e.Errors != nil {
		err = e.Errors[cmd]
	}
	hook := e.Hook
	e.mu.Unlock()

	if hook != nil {
		if herr := hook(dir, cmd, args); herr != nil {
			err = herr
		}
	}
	return out, err
}

// Recorded returns a copy of the recorded commands.
func (e *RecordingExecutor) Recorded() []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]RecordedCommand(nil), e.Commands...)
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
