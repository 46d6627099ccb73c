package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/worklog/internal/executil"
	"github.com/manav03panchal/worklog/internal/logging"
)

const (
	launchdLabel    = "com.worklog.daemon"
	systemdUnitName = "worklog.service"
)

// ServiceManager installs the daemon as a login service so recording can
// resume after login (the startAtLogin option).
type ServiceManager struct {
	executablePath string
	exec           executil.Executor
	goos           string
	home           string
	configHome     string
	logPath        string
}

// NewServiceManager creates a service manager for the current executable.
func NewServiceManager(exec executil.Executor) (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	return &ServiceManager{
		executablePath: execPath,
		exec:           exec,
		goos:           runtime.GOOS,
		home:           xdg.Home,
		configHome:     xdg.ConfigHome,
		logPath:        filepath.Join(DefaultDir(), LogFileName),
	}, nil
}

// Apply installs or uninstalls the service to match enabled. It is a no-op
// when the service is already in the requested state.
func (m *ServiceManager) Apply(ctx context.Context, enabled bool) error {
	installed := m.IsInstalled()
	switch {
	case enabled && !installed:
		return m.Install(ctx)
	case !enabled && installed:
		return m.Uninstall(ctx)
	}
	return nil
}

// Install installs the daemon as a user service.
func (m *ServiceManager) Install(ctx context.Context) error {
	switch m.goos {
	case "darwin":
		return m.installLaunchd(ctx)
	case "linux":
		return m.installSystemd(ctx)
	default:
		return fmt.Errorf("start at login is not supported on %s", m.goos)
	}
}

// Uninstall removes the daemon from user services.
func (m *ServiceManager) Uninstall(ctx context.Context) error {
	switch m.goos {
	case "darwin":
		return m.uninstallLaunchd(ctx)
	case "linux":
		return m.uninstallSystemd(ctx)
	default:
		return fmt.Errorf("start at login is not supported on %s", m.goos)
	}
}

// IsInstalled checks if the service is installed.
func (m *ServiceManager) IsInstalled() bool {
	path := m.UnitPath()
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// UnitPath returns the service definition path, or "" on unsupported systems.
func (m *ServiceManager) UnitPath() string {
	switch m.goos {
	case "darwin":
		return filepath.Join(m.home, "Library", "LaunchAgents", launchdLabel+".plist")
	case "linux":
		return filepath.Join(m.configHome, "systemd", "user", systemdUnitName)
	default:
		return ""
	}
}

// macOS launchd support

const launchdPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
        <string>daemon</string>
        <string>start</string>
        <string>--foreground</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <dict>
        <key>SuccessfulExit</key>
        <false/>
    </dict>
    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>
    <key>StandardErrorPath</key>
    <string>{{.LogPath}}</string>
</dict>
</plist>
`

func (m *ServiceManager) installLaunchd(ctx context.Context) error {
	plistPath := m.UnitPath()
	data := struct {
		Label          string
		ExecutablePath string
		LogPath        string
	}{
		Label:          launchdLabel,
		ExecutablePath: m.executablePath,
		LogPath:        m.logPath,
	}
	if err := writeTemplate(plistPath, launchdPlist, data); err != nil {
		return err
	}

	if _, err := m.exec.Run(ctx, "launchctl", "load", "-w", plistPath); err != nil {
		return fmt.Errorf("failed to load service: %w", err)
	}
	logging.Info("installed login service", logging.KeyPath, plistPath)
	return nil
}

func (m *ServiceManager) uninstallLaunchd(ctx context.Context) error {
	plistPath := m.UnitPath()

	// Not loaded is fine.
	_, _ = m.exec.Run(ctx, "launchctl", "unload", "-w", plistPath)

	if err := os.Remove(plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plist file: %w", err)
	}
	logging.Info("removed login service", logging.KeyPath, plistPath)
	return nil
}

// Linux systemd support

const systemdUnit = `[Unit]
Description=WorkLog screenshot recorder
After=graphical-session.target

[Service]
Type=simple
ExecStart={{.ExecutablePath}} daemon start --foreground
Restart=on-failure
RestartSec=5
StandardOutput=append:{{.LogPath}}
StandardError=append:{{.LogPath}}

[Install]
WantedBy=default.target
`

func (m *ServiceManager) installSystemd(ctx context.Context) error {
	unitPath := m.UnitPath()
	data := struct {
		ExecutablePath string
		LogPath        string
	}{
		ExecutablePath: m.executablePath,
		LogPath:        m.logPath,
	}
	if err := writeTemplate(unitPath, systemdUnit, data); err != nil {
		return err
	}

	if _, err := m.exec.Run(ctx, "systemctl", "--user", "daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	if _, err := m.exec.Run(ctx, "systemctl", "--user", "enable", systemdUnitName); err != nil {
		return fmt.Errorf("failed to enable service: %w", err)
	}
	logging.Info("installed login service", logging.KeyPath, unitPath)
	return nil
}

func (m *ServiceManager) uninstallSystemd(ctx context.Context) error {
	unitPath := m.UnitPath()

	_, _ = m.exec.Run(ctx, "systemctl", "--user", "disable", systemdUnitName)

	if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}

	_, _ = m.exec.Run(ctx, "systemctl", "--user", "daemon-reload")
	logging.Info("removed login service", logging.KeyPath, unitPath)
	return nil
}

func writeTemplate(path, text string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create service directory: %w", err)
	}

	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse service template: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create service file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}
	return nil
}
