package capture

import (
	"github.com/manav03panchal/worklog/internal/errors"
)

// tool is a command-line screenshot program.
type tool struct {
	name string
	args func(path string) []string
}

// linuxTools in order of preference: GNOME, wlroots Wayland, X11.
var linuxTools = []tool{
	{name: "gnome-screenshot", args: func(p string) []string { return []string{"-f", p} }},
	{name: "grim", args: func(p string) []string { return []string{p} }},
	{name: "scrot", args: func(p string) []string { return []string{"-o", p} }},
}

// selectTool returns the first tool that look finds.
func selectTool(tools []tool, look func(string) bool) (tool, bool) {
	for _, t := range tools {
		if look(t.name) {
			return t, true
		}
	}
	return tool{}, false
}

// toolCommand resolves a tool at capture time so one installed later is
// picked up without a restart.
func toolCommand(tools []tool, look func(string) bool) command {
	return func(path string) (string, []string, error) {
		t, ok := selectTool(tools, look)
		if !ok {
			return "", nil, errors.ErrNoCaptureTool
		}
		return t.name, t.args(path), nil
	}
}

// toolGate grants access when a capture tool is installed.
type toolGate struct {
	tools []tool
	look  func(string) bool
}

func (g toolGate) IsGranted() bool {
	_, ok := selectTool(g.tools, g.look)
	return ok
}

func (g toolGate) RequestAccess() error {
	if g.IsGranted() {
		return nil
	}
	return errors.ErrNoCaptureTool
}
