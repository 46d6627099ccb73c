package notify

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/manav03panchal/worklog/internal/executil"
)

// AppName is shown as the notification source.
const AppName = "WorkLog"

// Desktop shows native notifications through the platform's command-line
// notifier: osascript on macOS, notify-send on Linux.
type Desktop struct {
	exec executil.Executor
	goos string
}

// NewDesktop returns a desktop sink for the running OS, or nil when the OS
// has no supported notifier.
func NewDesktop(exec executil.Executor) *Desktop {
	return newDesktop(exec, runtime.GOOS)
}

func newDesktop(exec executil.Executor, goos string) *Desktop {
	switch goos {
	case "darwin", "linux":
		return &Desktop{exec: exec, goos: goos}
	}
	return nil
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) Send(ctx context.Context, m Message) error {
	name, args := d.command(m)
	if _, err := d.exec.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (d *Desktop) command(m Message) (string, []string) {
	if d.goos == "darwin" {
		script := fmt.Sprintf(`display notification "%s" with title "%s" subtitle "%s"`,
			escapeAppleScript(m.Body), AppName, escapeAppleScript(m.Title))
		return "osascript", []string{"-e", script}
	}
	return "notify-send", []string{"--app-name=" + AppName, m.Title, m.Body}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
