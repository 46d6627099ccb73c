package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/manav03panchal/worklog/internal/archive"
	"github.com/manav03panchal/worklog/internal/capture"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/notify"
	"github.com/manav03panchal/worklog/internal/output"
	"github.com/manav03panchal/worklog/internal/parser"
	"github.com/manav03panchal/worklog/internal/report"
	"github.com/manav03panchal/worklog/internal/scheduler"
	"github.com/manav03panchal/worklog/internal/storage"
)

// Maintenance job schedules (cron with seconds).
const (
	rotateSpec    = "0 0 * * * *"
	stateSpec     = "0 */5 * * * *"
	diskCheckSpec = "30 */30 * * * *"
	journalGCSpec = "0 17 4 * * *"
)

// Daemon manages the background daemon process.
type Daemon struct {
	dir     string
	pidFile *PIDFile
	state   *StateFile
}

// Status represents the daemon status as seen from the CLI.
type Status struct {
	Running bool
	PID     int
	Uptime  time.Duration
	State   *State
}

// RunOptions configures a foreground daemon run.
type RunOptions struct {
	ConfigPath  string
	JournalPath string
	Version     string
	Debug       bool
	// Stderr also sends logs to stderr.
	Stderr bool
}

// New creates a daemon manager rooted at dir.
func New(dir string) *Daemon {
	return &Daemon{
		dir:     dir,
		pidFile: NewPIDFile(dir),
		state:   NewStateFile(dir),
	}
}

// Dir returns the runtime directory.
func (d *Daemon) Dir() string {
	return d.dir
}

// LogPath returns the daemon log path.
func (d *Daemon) LogPath() string {
	return filepath.Join(d.dir, LogFileName)
}

// StatePath returns the state snapshot path.
func (d *Daemon) StatePath() string {
	return d.state.Path()
}

// IsRunning returns true if the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

// Status returns the current daemon status.
func (d *Daemon) Status() *Status {
	status := &Status{}

	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid

	if st, err := d.state.Read(); err == nil {
		status.State = st
		status.Uptime = time.Since(st.StartedAt)
	}
	return status
}

// Run runs the daemon in the foreground until ctx is done or a shutdown
// signal arrives.
func (d *Daemon) Run(ctx context.Context, opts RunOptions) error {
	lock := storage.NewFileLock(d.dir)
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, storage.ErrLockAlreadyHeld) {
			return fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
		}
		return err
	}
	defer func() { _ = lock.Release() }()

	logFile, err := OpenLogFile(d.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	var out io.Writer = logFile
	if opts.Stderr {
		out = io.MultiWriter(os.Stderr, logFile)
	}
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logging.Init(logging.Config{Level: level, JSON: true, Output: out, AddSource: opts.Debug, Component: "daemon"})

	storage.SetThresholds(config.Global.Storage.MinFreeSpace, config.Global.Storage.MinFreeSpaceWarning)

	if err := d.pidFile.Write(); err != nil {
		return err
	}
	defer func() { _ = d.pidFile.Remove() }()

	store := config.NewStore(opts.ConfigPath)
	store.Load()

	var journal capture.Journal
	db, err := storage.Open(storage.Options{Path: opts.JournalPath})
	if err != nil {
		logging.Warn("capture journal unavailable", logging.Err(err), logging.KeyPath, opts.JournalPath)
	} else {
		defer db.Close()
		journal = storage.NewCaptureRepo(db, config.Global.Storage.JournalRetention)
	}

	runner := &executil.RealExecutor{}
	sinks := []notify.Sink{notify.LogSink{}}
	if desktop := notify.NewDesktop(runner); desktop != nil {
		sinks = append(sinks, desktop)
	}
	dispatcher := notify.NewDispatcher(config.Global.Notify.Timeout, sinks...)
	defer dispatcher.Wait()

	clk := clock.New()
	gate := capture.NewPermissionGate(runner)
	executor := capture.NewExecutor(capture.Options{
		Clock:    clk,
		Config:   store,
		Device:   capture.NewDevice(runner),
		Archive:  archive.New(config.Global.Capture.GitBinary, runner),
		Notifier: dispatcher,
		Journal:  journal,
	})

	health := NewHealthChecker(opts.Version)
	health.AddCheck("disk", func() error {
		return storage.CheckDiskSpace(store.Current().Root())
	})
	health.AddCheck("journal", func() error {
		if db == nil {
			return errors.New("capture journal is not open")
		}
		return nil
	})

	startedAt := time.Now()
	var (
		engine  *Engine
		stateMu sync.Mutex
	)
	writeState := func() {
		stateMu.Lock()
		defer stateMu.Unlock()
		st := engine.Snapshot()
		st.PID = os.Getpid()
		st.StartedAt = startedAt
		st.Health = health.Check()
		if err := d.state.Write(&st); err != nil {
			logging.Warn("failed to write daemon state", logging.Err(err))
		}
	}
	engine = NewEngine(EngineOptions{
		Clock:    clk,
		Store:    store,
		Capturer: executor,
		Gate:     gate,
		Builder:  report.NewBuilder(store, clk),
		Notifier: dispatcher,
		OnChange: writeState,
	})
	defer func() { _ = d.state.Remove() }()

	watcher, err := config.Watch(store, config.Global.Watcher.Debounce)
	if err != nil {
		logging.Warn("config watcher unavailable", logging.Err(err))
	} else {
		defer watcher.Close()
	}

	maint := scheduler.NewMaintenance()
	if err := d.addJobs(maint, logFile, store, db, dispatcher, writeState); err != nil {
		return err
	}
	maint.Start()
	defer maint.Stop()

	if err := engine.Start(ctx); err != nil {
		logging.Warn("auto-start failed", logging.Err(err))
	}
	writeState()

	handler := NewSignalHandler()
	handler.Setup()
	defer handler.Cleanup()

	logging.Info("daemon started", "pid", os.Getpid(), logging.KeyDir, store.Current().Root())

	for {
		ev, ok := handler.Next(ctx)
		if !ok || ev.Shutdown() {
			if ev.Signal != nil {
				logging.Info("received signal", "signal", ev.Signal.String())
			}
			break
		}
		d.handleControl(ctx, engine, clk, dispatcher, ev.Control)
	}

	engine.Shutdown()
	logging.Info("daemon stopped")
	return nil
}

func (d *Daemon) addJobs(maint *scheduler.Maintenance, logFile *LogFile, store *config.Store, db *storage.DB, n scheduler.Notifier, writeState func()) error {
	if _, err := maint.AddJob("log rotation", rotateSpec, func() {
		rotated, err := logFile.Rotate(DefaultMaxLogSize)
		if err != nil {
			logging.Warn("log rotation failed", logging.Err(err))
			return
		}
		if rotated {
			logging.Info("log rotated", logging.KeyPath, logFile.Path())
		}
	}); err != nil {
		return err
	}
	if _, err := maint.AddJob("state snapshot", stateSpec, writeState); err != nil {
		return err
	}
	if db != nil {
		if _, err := maint.AddJob("journal gc", journalGCSpec, func() {
			files, err := db.CollectGarbage()
			if err != nil {
				logging.Warn("journal gc failed", logging.Err(err))
				return
			}
			logging.DebugLog("journal gc finished", logging.KeyCount, files)
		}); err != nil {
			return err
		}
	}
	_, err := maint.AddJob("disk check", diskCheckSpec, func() {
		if msg := storage.CheckDiskSpaceWarning(store.Current().Root()); msg != "" {
			logging.Warn("low disk space", logging.KeyDir, store.Current().Root())
			n.Notify("Low disk space", msg)
		}
	})
	return err
}

func (d *Daemon) handleControl(ctx context.Context, engine *Engine, clk clock.Clock, n scheduler.Notifier, c Control) {
	logging.Info("control request", logging.KeyOperation, c.String())
	switch c {
	case ControlToggle:
		state, err := engine.Toggle(ctx)
		if err != nil {
			logging.Warn("toggle failed", logging.Err(err))
			n.Notify(scheduler.TitleRecordingStopped, errors.FormatError(err))
			return
		}
		logging.Info("recording toggled", logging.KeyState, state.String())
	case ControlReport:
		now := clk.Now()
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		doc, err := engine.BuildReport(ctx, day)
		if err != nil {
			logging.Warn("report failed", logging.Err(err))
			n.Notify(scheduler.TitleReportFailed, err.Error())
			return
		}
		if doc == nil {
			logging.Info("no screenshots for report", logging.KeyDay, day.Format(time.DateOnly))
		}
	}
}

// Control sends a control request to the running daemon.
func (d *Daemon) Control(c Control) error {
	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return ErrNotRunning
	}
	return SendControl(pid, c)
}

// StartBackground starts the daemon in a detached child process.
func (d *Daemon) StartBackground(debug bool) (int, error) {
	if pid := d.pidFile.RunningPID(); pid > 0 {
		return pid, ErrAlreadyRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"daemon", "start", "--foreground"}
	if debug {
		args = append(args, "--debug")
	}
	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil

	// Early failures before the logger is set up go to the log file too.
	if err := os.MkdirAll(d.dir, 0o755); err == nil {
		if f, err := os.OpenFile(d.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			defer f.Close()
			cmd.Stdout = f
			cmd.Stderr = f
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = cmd.Process.Release()

	time.Sleep(config.Global.Daemon.StartupWait)

	if !d.pidFile.IsRunning() {
		if msg := d.lastLogError(); msg != "" {
			return 0, fmt.Errorf("daemon failed to start: %s", msg)
		}
		return 0, fmt.Errorf("daemon failed to start (check logs: %s)", d.LogPath())
	}
	return d.pidFile.RunningPID(), nil
}

// Stop terminates the running daemon, killing it after the kill timeout.
func (d *Daemon) Stop() error {
	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := terminate(process); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
	}

	deadline := time.Now().Add(config.Global.Daemon.KillTimeout)
	for IsProcessRunning(pid) {
		if time.Now().After(deadline) {
			logging.Warn("daemon did not exit, killing", "pid", pid)
			_ = process.Kill()
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	_ = d.pidFile.Remove()
	_ = d.state.Remove()
	return nil
}

// RecentLogs returns up to n trailing lines of the daemon log.
func (d *Daemon) RecentLogs(n int) ([]string, error) {
	f, err := os.Open(d.LogPath())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}

func (d *Daemon) lastLogError() string {
	lines, err := d.RecentLogs(10)
	if err != nil {
		return ""
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "already running") {
			return line
		}
	}
	return ""
}

// FormatUptime formats a duration as uptime.
func FormatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}

// Output converts the status for the CLI and JSON formatters.
func (s *Status) Output() *output.StatusOutput {
	out := &output.StatusOutput{
		Running:    s.Running,
		PID:        s.PID,
		Uptime:     s.Uptime,
		UptimeSecs: int64(s.Uptime.Seconds()),
	}
	if st := s.State; st != nil {
		out.Recording = st.Recording
		if st.IntervalMs > 0 {
			out.Interval = parser.FormatInterval(time.Duration(st.IntervalMs) * time.Millisecond)
		}
		out.LastCapture = st.LastCapture
		out.LastError = st.LastError
		out.NextReport = st.NextReport
		out.Root = st.Root
	}
	return out
}
