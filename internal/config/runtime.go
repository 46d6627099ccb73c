// Package config holds WorkLog's two configuration layers: process-level
// runtime tunables (environment overrides) and the user settings document.
package config

import (
	"os"
	"strconv"
	"time"
)

// RuntimeConfig holds process tunables that are not part of the user
// settings document.
type RuntimeConfig struct {
	Daemon  DaemonConfig
	Capture CaptureConfig
	Notify  NotifyConfig
	Watcher WatcherConfig
	Storage StorageConfig
	Server  ServerConfig
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	// StartupWait is the time to wait for the daemon to start before checking status.
	// Default: 500ms
	StartupWait time.Duration

	// KillTimeout is the timeout for graceful shutdown before force kill.
	// Default: 5s
	KillTimeout time.Duration
}

// CaptureConfig holds capture and archive tunables.
type CaptureConfig struct {
	// Timeout bounds one raw capture call.
	// Default: 30s
	Timeout time.Duration

	// GitBinary is the git executable used by the archive.
	// Default: git
	GitBinary string
}

// NotifyConfig holds desktop notification tunables.
type NotifyConfig struct {
	// Timeout bounds one notification command.
	// Default: 5s
	Timeout time.Duration
}

// WatcherConfig holds config file watcher tunables.
type WatcherConfig struct {
	// Debounce coalesces bursts of file events into one reload.
	// Default: 200ms
	Debounce time.Duration
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	// MinFreeSpace is the minimum free space required for write operations.
	// Default: 10MB
	MinFreeSpace uint64

	// MinFreeSpaceWarning is the threshold for warning about low disk space.
	// Default: 50MB
	MinFreeSpaceWarning uint64

	// JournalRetention is how long capture journal records are kept.
	// Default: 90 days
	JournalRetention time.Duration
}

// ServerConfig holds the report browser configuration.
type ServerConfig struct {
	// Addr is the listen address for `worklog serve`.
	// Default: 127.0.0.1:7777
	Addr string
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Daemon: DaemonConfig{
			StartupWait: 500 * time.Millisecond,
			KillTimeout: 5 * time.Second,
		},
		Capture: CaptureConfig{
			Timeout:   30 * time.Second,
			GitBinary: "git",
		},
		Notify: NotifyConfig{
			Timeout: 5 * time.Second,
		},
		Watcher: WatcherConfig{
			Debounce: 200 * time.Millisecond,
		},
		Storage: StorageConfig{
			MinFreeSpace:        10 * 1024 * 1024, // 10MB
			MinFreeSpaceWarning: 50 * 1024 * 1024, // 50MB
			JournalRetention:    90 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7777",
		},
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and can be overridden via environment variables.
var Global = initGlobal()

func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	return cfg
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}

func envUint(key string, dst *uint64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	envDuration("WORKLOG_DAEMON_STARTUP_WAIT", &c.Daemon.StartupWait)
	envDuration("WORKLOG_DAEMON_KILL_TIMEOUT", &c.Daemon.KillTimeout)

	envDuration("WORKLOG_CAPTURE_TIMEOUT", &c.Capture.Timeout)
	envString("WORKLOG_GIT", &c.Capture.GitBinary)

	envDuration("WORKLOG_NOTIFY_TIMEOUT", &c.Notify.Timeout)
	envDuration("WORKLOG_WATCH_DEBOUNCE", &c.Watcher.Debounce)

	envUint("WORKLOG_MIN_FREE_SPACE", &c.Storage.MinFreeSpace)
	envUint("WORKLOG_MIN_FREE_SPACE_WARNING", &c.Storage.MinFreeSpaceWarning)
	envDuration("WORKLOG_JOURNAL_RETENTION", &c.Storage.JournalRetention)

	envString("WORKLOG_SERVE_ADDR", &c.Server.Addr)
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
func (c *RuntimeConfig) Reset() {
	*c = *DefaultRuntimeConfig()
}
