//go:build darwin

package capture

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/manav03panchal/worklog/internal/executil"
	"github.com/manav03panchal/worklog/internal/logging"
)

const privacyPane = "x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture"

// NewDevice returns the screencapture-backed device. -x silences the shutter
// sound; the default format is PNG.
func NewDevice(exec executil.Executor) Device {
	return &commandDevice{
		exec: exec,
		command: func(path string) (string, []string, error) {
			return "screencapture", []string{"-x", "-m", path}, nil
		},
		emptyIsDenied: true,
	}
}

type darwinGate struct {
	exec executil.Executor
}

// NewPermissionGate returns the Screen Recording permission gate.
func NewPermissionGate(exec executil.Executor) PermissionGate {
	return &darwinGate{exec: exec}
}

// IsGranted probes with a throwaway capture; without Screen Recording access
// screencapture fails or writes nothing.
func (g *darwinGate) IsGranted() bool {
	dir, err := os.MkdirTemp("", "worklog-probe-*")
	if err != nil {
		return false
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = NewDevice(g.exec).CaptureToFile(ctx, filepath.Join(dir, "probe.png"))
	if err != nil {
		logging.DebugLog("screen recording probe failed", logging.Err(err))
		return false
	}
	return true
}

// RequestAccess opens the Screen Recording privacy pane.
func (g *darwinGate) RequestAccess() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := g.exec.Run(ctx, "open", privacyPane)
	return err
}
