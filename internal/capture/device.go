// Package capture runs one capture cycle: raw screenshot, optional JPEG
// transcode, git commit and notification.
package capture

import (
	"context"
	"fmt"
	"os"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
)

// Device takes a raw screenshot of the main display and writes it as PNG.
type Device interface {
	CaptureToFile(ctx context.Context, path string) error
}

// PermissionGate reports whether the process may capture the screen.
type PermissionGate interface {
	IsGranted() bool
	// RequestAccess asks the platform to grant access. Access is usually
	// granted out of band, so callers check IsGranted again later.
	RequestAccess() error
}

// DeviceFunc adapts a function to the Device interface.
type DeviceFunc func(ctx context.Context, path string) error

func (f DeviceFunc) CaptureToFile(ctx context.Context, path string) error {
	return f(ctx, path)
}

// command builds the argv that writes a screenshot to path.
type command func(path string) (name string, args []string, err error)

// commandDevice captures by running a platform screenshot tool.
type commandDevice struct {
	exec    executil.Executor
	command command
	// emptyIsDenied maps an empty output file to ErrPermissionDenied.
	emptyIsDenied bool
}

func (d *commandDevice) CaptureToFile(ctx context.Context, path string) error {
	name, args, err := d.command(path)
	if err != nil {
		return err
	}
	if _, err := d.exec.Run(ctx, name, args...); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		if d.emptyIsDenied {
			return fmt.Errorf("%s wrote no image: %w", name, errors.ErrPermissionDenied)
		}
		return fmt.Errorf("%s wrote no image: %w", name, err)
	}
	if info.Size() == 0 {
		if d.emptyIsDenied {
			return fmt.Errorf("%s wrote an empty image: %w", name, errors.ErrPermissionDenied)
		}
		return fmt.Errorf("%s wrote an empty image", name)
	}
	return nil
}

// StaticGate is a PermissionGate with a fixed answer.
type StaticGate bool

func (g StaticGate) IsGranted() bool { return bool(g) }

func (g StaticGate) RequestAccess() error {
	if g {
		return nil
	}
	return errors.ErrPermissionDenied
}
