package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/storage"
)

// FileName is the settings document name inside the config directory.
const FileName = "config.json"

// DefaultPath returns the settings document path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, FileName)
}

// Subscriber is called after the configuration changes.
type Subscriber func(old, new Configuration)

// Store owns the user configuration. It is the only writer of the settings
// document; every other component reads a copy through Current or receives
// changes through Subscribe.
type Store struct {
	path string

	// write orders changes: merge, persist and notify happen as one step, so
	// the document on disk and subscribers see changes in the same order as
	// the in-memory value.
	write sync.Mutex

	mu   sync.RWMutex
	cur  Configuration
	subs []Subscriber
}

// NewStore creates a store backed by the document at path. The in-memory
// value starts at Defaults until Load is called.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, cur: Defaults()}
}

// Path returns the settings document path.
func (s *Store) Path() string {
	return s.path
}

// Current returns a copy of the current configuration.
func (s *Store) Current() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Subscribe registers fn to be called after every change.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Load reads the settings document, merging it over the defaults. A missing
// or corrupt document is replaced by the defaults. Load never fails; persist
// failures are logged and the in-memory value stays in effect.
func (s *Store) Load() Configuration {
	s.write.Lock()
	defer s.write.Unlock()

	cfg, err := s.read()

	s.mu.Lock()
	s.cur = cfg
	s.mu.Unlock()

	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("settings unreadable, using defaults", logging.KeyPath, s.path, logging.Err(err))
		}
		if perr := s.persist(cfg); perr != nil {
			logging.Error("failed to write default settings", logging.Err(perr))
		}
	}
	return cfg
}

// Update merges p into the current configuration, persists the result and
// notifies subscribers. An invalid result is rejected and nothing changes.
// A persist failure returns the new value together with a ConfigError; the
// in-memory value is not rolled back.
func (s *Store) Update(p Partial) (Configuration, error) {
	s.write.Lock()
	defer s.write.Unlock()

	s.mu.Lock()
	old := s.cur
	next := old.Apply(p)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		ue := errors.NewUserError(
			fmt.Sprintf("invalid configuration: %v", err),
			"Run 'worklog config show' to see the current values.",
		)
		ue.Cause = err
		return old, ue
	}
	s.cur = next
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	perr := s.persist(next)
	if perr != nil {
		logging.Error("failed to persist settings", logging.KeyPath, s.path, logging.Err(perr))
	}

	if old != next {
		for _, fn := range subs {
			fn(old, next)
		}
	}
	return next, perr
}

// Reset restores every option to its default.
func (s *Store) Reset() (Configuration, error) {
	d := Defaults()
	return s.Update(Partial{
		Interval:          &d.Interval,
		AutoStart:         &d.AutoStart,
		Notifications:     &d.Notifications,
		StartAtLogin:      &d.StartAtLogin,
		GitEnabled:        &d.GitEnabled,
		CompressToJpeg:    &d.CompressToJpeg,
		JpegQuality:       &d.JpegQuality,
		CreateDailyReport: &d.CreateDailyReport,
		DailyReportTime:   &d.DailyReportTime,
		SaveDirectory:     &d.SaveDirectory,
	})
}

// Reload re-reads the document after it changed on disk and notifies
// subscribers when the value differs. An unreadable document is ignored so a
// half-written edit never replaces the live configuration.
func (s *Store) Reload() (Configuration, bool) {
	s.write.Lock()
	defer s.write.Unlock()

	cfg, err := s.read()
	if err != nil {
		logging.Warn("ignoring unreadable settings", logging.KeyPath, s.path, logging.Err(err))
		return s.Current(), false
	}

	s.mu.Lock()
	old := s.cur
	if old == cfg {
		s.mu.Unlock()
		return cfg, false
	}
	s.cur = cfg
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(old, cfg)
	}
	return cfg, true
}

// read decodes the document over the defaults one field at a time, so a
// field of the wrong type falls back to its default without discarding the
// others. Invalid values are reset the same way. On error the returned
// configuration is Defaults.
func (s *Store) read() (Configuration, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Defaults(), errors.NewConfigError("load", s.path, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Defaults(), errors.NewConfigError("load", s.path, err)
	}

	cfg, reset := decodeFields(fields)
	cfg, invalid := sanitize(cfg)
	reset = append(reset, invalid...)
	for _, field := range reset {
		logging.Warn("invalid setting reset to default", "field", field, logging.KeyPath, s.path)
	}
	return cfg, nil
}

// decodeFields applies each document field to the defaults and returns the
// keys that could not be decoded.
func decodeFields(fields map[string]json.RawMessage) (Configuration, []string) {
	cfg := Defaults()
	var bad []string
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		one, err := json.Marshal(map[string]json.RawMessage{key: fields[key]})
		if err != nil {
			bad = append(bad, key)
			continue
		}
		next := cfg
		if err := json.Unmarshal(one, &next); err != nil {
			bad = append(bad, key)
			continue
		}
		cfg = next
	}
	return cfg, bad
}

func (s *Store) persist(cfg Configuration) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.NewConfigError("persist", s.path, err)
	}
	if err := ensureDir(filepath.Dir(s.path)); err != nil {
		return errors.NewConfigError("persist", s.path, err)
	}
	if err := storage.SafeWrite(s.path, data, 0o644); err != nil {
		return errors.NewConfigError("persist", s.path, err)
	}
	return nil
}
