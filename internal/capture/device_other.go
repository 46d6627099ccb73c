//go:build !darwin && !linux && !windows

package capture

import (
	"context"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
)

// NewDevice returns a device that always fails.
func NewDevice(executil.Executor) Device {
	return DeviceFunc(func(context.Context, string) error {
		return errors.ErrNoCaptureTool
	})
}

// NewPermissionGate never grants.
func NewPermissionGate(executil.Executor) PermissionGate {
	return StaticGate(false)
}
