package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/archive"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
	daemonLogsFlagFollow      bool
	daemonInstallFlagForce    bool
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"d", "bg", "service"},
	Short:   "Manage the background daemon",
	Long: `Manage the WorkLog background daemon. The daemon owns the capture timer,
the daily report timer and the capture journal, and follows changes to the
settings file while it runs.

Examples:
  worklog daemon start
  worklog daemon status
  worklog daemon stop
  worklog daemon logs --tail 20`,
	RunE: runDaemonStatus,
}

// daemonStartCmd starts the daemon.
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the WorkLog background daemon.

Recording starts immediately when autoStart is enabled; otherwise use
'worklog record start'.

Examples:
  worklog daemon start             # Start in background
  worklog daemon start --foreground  # Start in foreground (for debugging)`,
	RunE: runDaemonStart,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	RunE:  runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and recording status",
	RunE:  runDaemonStatus,
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View the daemon log file.

Examples:
  worklog daemon logs
  worklog daemon logs --tail 50
  worklog daemon logs --follow`,
	RunE: runDaemonLogs,
}

// daemonInstallCmd installs the daemon as a login service.
var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Start the daemon at login",
	Long: `Install the WorkLog daemon as a user service that starts at login.
This is the same as 'worklog config set startAtLogin true'.

On macOS, this creates a launchd agent in ~/Library/LaunchAgents.
On Linux, this creates a systemd user service in ~/.config/systemd/user.

Examples:
  worklog daemon install
  worklog daemon install --force   # Reinstall if already installed`,
	RunE: runDaemonInstall,
}

// daemonUninstallCmd uninstalls the login service.
var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop starting the daemon at login",
	RunE:  runDaemonUninstall,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonStartFlagForeground, "foreground", false,
		"Run in foreground (don't daemonize)")

	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")
	daemonLogsCmd.Flags().BoolVar(&daemonLogsFlagFollow, "follow", false,
		"Follow log output (like tail -f)")

	daemonInstallCmd.Flags().BoolVar(&daemonInstallFlagForce, "force", false,
		"Force reinstall if already installed")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)

	rootCmd.AddCommand(daemonCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon

	if status := d.Status(); status.Running {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{
				"status": "already_running",
				"pid":    status.PID,
			})
		}
		return fmt.Errorf("daemon is already running (PID: %d)", status.PID)
	}

	if !daemonStartFlagForeground {
		pid, err := d.StartBackground(ctx.Debug)
		if err != nil {
			return err
		}
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{"status": "started", "pid": pid})
		}
		ctx.CLIFormatter().Success(fmt.Sprintf("Daemon started (PID: %d)", pid))
		return nil
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !ctx.IsJSON() {
		ctx.Formatter.Printf("Starting worklog daemon (foreground mode)...\n")
	}
	return d.Run(runCtx, daemon.RunOptions{
		ConfigPath:  ctx.Store.Path(),
		JournalPath: ctx.JournalPath(),
		Version:     Version,
		Debug:       ctx.Debug,
		Stderr:      isatty.IsTerminal(os.Stderr.Fd()),
	})
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon
	status := d.Status()
	if !status.Running {
		ctx.CLIFormatter().Muted("Daemon is not running")
		return nil
	}

	if err := d.Stop(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{"status": "stopped", "pid": status.PID})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Daemon stopped (was PID: %d)", status.PID))
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	out := ctx.Daemon.Status().Output()
	cfg := ctx.Store.Current()
	if !out.Running {
		out.Root = cfg.Root()
	}
	if cfg.GitEnabled {
		a := archive.New(config.Global.Capture.GitBinary, &executil.RealExecutor{})
		n, err := a.Count(cmd.Context(), cfg.ScreenshotDir())
		if err != nil {
			ctx.Debugf("counting commits: %v", err)
		}
		out.Commits = n
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus(out)
	}

	ctx.CLIFormatter().PrintStatus(out)
	if !out.Running {
		ctx.Formatter.Println("")
		ctx.CLIFormatter().Muted("Start with: worklog daemon start")
	}
	return nil
}

func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := ctx.Daemon.LogPath()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		ctx.Formatter.Println("No log file found.")
		ctx.Formatter.Printf("Log path: %s\n", logPath)
		return nil
	}

	lines, err := ctx.Daemon.RecentLogs(daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		ctx.Formatter.Println(line)
	}

	if daemonLogsFlagFollow {
		return followLogs(cmd.Context(), logPath, ctx.Formatter.Writer)
	}
	return nil
}

// followLogs prints lines appended to path until interrupted.
func followLogs(parent context.Context, path string, w io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	runCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}

	reader := bufio.NewReader(file)
	drain := func() {
		for {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				fmt.Fprint(w, line)
			}
			if err != nil {
				return
			}
		}
	}

	for {
		select {
		case <-runCtx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				drain()
			}
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				// Rotated: follow the new file from its start.
				ctx.CLIFormatter().Muted("log rotated")
				return followNew(runCtx, path, w)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func followNew(runCtx context.Context, path string, w io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, file)
	file.Close()
	if err != nil {
		return err
	}
	return followLogs(runCtx, path, w)
}

func runDaemonInstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager(&executil.RealExecutor{})
	if err != nil {
		return err
	}

	if mgr.IsInstalled() && !daemonInstallFlagForce {
		ctx.CLIFormatter().Muted("Login service is already installed: " + mgr.UnitPath())
		return nil
	}
	if mgr.IsInstalled() {
		if err := mgr.Uninstall(cmd.Context()); err != nil {
			return err
		}
	}
	if err := mgr.Install(cmd.Context()); err != nil {
		return err
	}
	if err := setStartAtLogin(true); err != nil {
		return err
	}

	ctx.CLIFormatter().Success("Login service installed: " + mgr.UnitPath())
	return nil
}

func runDaemonUninstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager(&executil.RealExecutor{})
	if err != nil {
		return err
	}
	if err := mgr.Uninstall(cmd.Context()); err != nil {
		return err
	}
	if err := setStartAtLogin(false); err != nil {
		return err
	}
	ctx.CLIFormatter().Success("Login service removed")
	return nil
}

// setStartAtLogin records the service state in the settings document.
func setStartAtLogin(enabled bool) error {
	_, err := ctx.Store.Update(config.Partial{StartAtLogin: &enabled})
	if err != nil && !errors.IsConfigError(err) {
		return err
	}
	return nil
}
