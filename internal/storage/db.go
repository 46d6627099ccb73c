// Package storage provides WorkLog's persistence helpers: the badger-backed
// capture journal, atomic file writes and the single-instance file lock.
package storage

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/worklog/internal/errors"
)

const (
	// AppName is the application name used for data directories.
	AppName = "worklog"
)

// DB wraps a Badger database connection.
type DB struct {
	db   *badger.DB
	path string
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
	// ReadOnly opens an existing journal without taking the write lock.
	ReadOnly bool
}

// DefaultPath returns the default journal path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "journal")
}

// Open opens or creates a database at the given path. A journal held by a
// running daemon yields errors.ErrJournalLocked.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options
	path := ""

	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Path).WithReadOnly(opts.ReadOnly)
		path = opts.Path
	}

	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		if isLockedError(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrJournalLocked, opts.Path)
		}
		return nil, err
	}

	return &DB{db: db, path: path}, nil
}

func isLockedError(err error) bool {
	return strings.Contains(err.Error(), "Cannot acquire directory lock")
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the on-disk location, empty for in-memory databases.
func (d *DB) Path() string {
	return d.path
}

// gcDiscardRatio is the share of stale data a value log file needs before
// badger rewrites it.
const gcDiscardRatio = 0.5

// CollectGarbage reclaims value log space left by expired and deleted
// journal records. It returns how many files were rewritten.
func (d *DB) CollectGarbage() (int, error) {
	if d.path == "" {
		return 0, nil
	}
	n := 0
	for {
		err := d.db.RunValueLogGC(gcDiscardRatio)
		if stderrors.Is(err, badger.ErrNoRewrite) || stderrors.Is(err, badger.ErrRejected) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}
