//go:build linux

package capture

import (
	"github.com/manav03panchal/worklog/internal/executil"
)

// NewDevice returns a device backed by the first installed screenshot tool.
func NewDevice(exec executil.Executor) Device {
	return &commandDevice{exec: exec, command: toolCommand(linuxTools, executil.LookPath)}
}

// NewPermissionGate grants access when a screenshot tool is installed.
func NewPermissionGate(executil.Executor) PermissionGate {
	return toolGate{tools: linuxTools, look: executil.LookPath}
}
