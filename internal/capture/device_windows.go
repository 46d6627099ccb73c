//go:build windows

package capture

import (
	"strings"

	"github.com/manav03panchal/worklog/internal/executil"
)

const captureScript = `Add-Type -AssemblyName System.Windows.Forms,System.Drawing;` +
	`$b=[System.Windows.Forms.Screen]::PrimaryScreen.Bounds;` +
	`$bmp=New-Object System.Drawing.Bitmap $b.Width,$b.Height;` +
	`$g=[System.Drawing.Graphics]::FromImage($bmp);` +
	`$g.CopyFromScreen($b.Location,[System.Drawing.Point]::Empty,$b.Size);` +
	`$bmp.Save('%s',[System.Drawing.Imaging.ImageFormat]::Png);` +
	`$g.Dispose();$bmp.Dispose()`

// NewDevice returns a PowerShell System.Drawing capture device.
func NewDevice(exec executil.Executor) Device {
	return &commandDevice{
		exec: exec,
		command: func(path string) (string, []string, error) {
			script := strings.Replace(captureScript, "%s", strings.ReplaceAll(path, "'", "''"), 1)
			return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, nil
		},
	}
}

// NewPermissionGate always grants; Windows has no screen capture permission.
func NewPermissionGate(executil.Executor) PermissionGate {
	return StaticGate(true)
}
