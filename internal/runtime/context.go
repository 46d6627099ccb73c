// Package runtime provides the per-invocation CLI context for WorkLog.
package runtime

import (
	"os"
	"path/filepath"

	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/output"
	"github.com/manav03panchal/worklog/internal/storage"
)

// Context holds the application runtime context.
type Context struct {
	Formatter *output.Formatter
	Store     *config.Store
	Daemon    *daemon.Daemon

	// Debug mode
	Debug bool

	journalPath     string
	journalInMemory bool
	db              *storage.DB
	captures        *storage.CaptureRepo
}

// Options configures the runtime context.
type Options struct {
	ConfigPath  string
	JournalPath string
	StateDir    string
	InMemory    bool
	Format      output.Format
	ColorMode   output.ColorMode
	Debug       bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		ConfigPath:  config.DefaultPath(),
		JournalPath: storage.DefaultPath(),
		StateDir:    daemon.DefaultDir(),
		InMemory:    false,
		Format:      output.FormatCLI,
		ColorMode:   output.ColorAuto,
		Debug:       false,
	}
}

// New creates a new runtime context. The settings document is loaded
// eagerly; the capture journal is opened on first use.
func New(opts Options) (*Context, error) {
	if envPath := os.Getenv("WORKLOG_CONFIG"); envPath != "" {
		opts.ConfigPath = envPath
	}
	if envPath := os.Getenv("WORKLOG_JOURNAL"); envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.JournalPath = envPath
		}
	}
	if opts.StateDir == "" {
		opts.StateDir = daemon.DefaultDir()
	}

	store := config.NewStore(opts.ConfigPath)
	store.Load()

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		Formatter:       formatter,
		Store:           store,
		Daemon:          daemon.New(opts.StateDir),
		Debug:           opts.Debug,
		journalPath:     opts.JournalPath,
		journalInMemory: opts.InMemory,
	}, nil
}

// JournalPath returns the capture journal location.
func (c *Context) JournalPath() string {
	return c.journalPath
}

// Captures opens the capture journal read-only. It fails with
// errors.ErrJournalLocked while the daemon holds the journal.
func (c *Context) Captures() (*storage.CaptureRepo, error) {
	if c.captures != nil {
		return c.captures, nil
	}
	// A journal that was never written reads as empty.
	inMemory := c.journalInMemory
	if _, err := os.Stat(filepath.Join(c.journalPath, "MANIFEST")); err != nil {
		inMemory = true
	}
	db, err := storage.Open(storage.Options{
		Path:     c.journalPath,
		InMemory: inMemory,
		ReadOnly: !inMemory,
	})
	if err != nil {
		return nil, err
	}
	c.db = db
	c.captures = storage.NewCaptureRepo(db, config.Global.Storage.JournalRetention)
	return c.captures, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		c.captures = nil
		return err
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// Debugf prints a diagnostic line to stderr in debug mode.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug {
		c.Formatter.Debugf(format, args...)
	}
}
