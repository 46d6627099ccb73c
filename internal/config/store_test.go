package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/worklog/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "worklog", FileName))
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func ptr[T any](v T) *T { return &v }

// =============================================================================
// Load
// =============================================================================

func TestStore_LoadMissingWritesDefaults(t *testing.T) {
	s := newTestStore(t)

	cfg := s.Load()
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, Defaults(), s.Current())

	doc := readDoc(t, s.Path())
	assert.Equal(t, float64(60000), doc["interval"])
	assert.Equal(t, "23:00", doc["dailyReportTime"])
}

func TestStore_LoadCorruptFileFallsBackToDefaults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	cfg := s.Load()
	assert.Equal(t, Defaults(), cfg)

	// The corrupt file was replaced with the defaults.
	doc := readDoc(t, s.Path())
	assert.Equal(t, true, doc["gitEnabled"])
}

func TestStore_LoadFillsAbsentFieldsAndIgnoresUnknown(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"interval": 5000, "futureOption": [1,2,3]}`), 0o644))

	cfg := s.Load()
	want := Defaults()
	want.Interval = 5000
	assert.Equal(t, want, cfg)
}

func TestStore_LoadResetsInvalidFields(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	doc := `{"interval": -1, "jpegQuality": 140, "dailyReportTime": "25:99", "autoStart": true}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(doc), 0o644))

	cfg := s.Load()
	want := Defaults()
	want.AutoStart = true
	assert.Equal(t, want, cfg)
}

func TestStore_LoadWrongTypeKeepsOtherFields(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	doc := `{"interval": "5000", "jpegQuality": 40, "gitEnabled": "yes", "saveDirectory": "/data/wl"}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(doc), 0o644))

	cfg := s.Load()
	want := Defaults()
	want.JpegQuality = 40
	want.SaveDirectory = "/data/wl"
	assert.Equal(t, want, cfg)

	// The document was read, not replaced.
	assert.Equal(t, "5000", readDoc(t, s.Path())["interval"])
}

func TestDecodeFields(t *testing.T) {
	cfg, bad := decodeFields(map[string]json.RawMessage{
		"interval":  json.RawMessage(`"fast"`),
		"autoStart": json.RawMessage(`true`),
		"unknown":   json.RawMessage(`{}`),
	})
	assert.Equal(t, []string{"interval"}, bad)
	assert.True(t, cfg.AutoStart)
	assert.Equal(t, Defaults().Interval, cfg.Interval)
}

// =============================================================================
// Update
// =============================================================================

func TestStore_UpdateMergesAndPersists(t *testing.T) {
	s := newTestStore(t)
	s.Load()

	_, err := s.Update(Partial{Interval: ptr(30000)})
	require.NoError(t, err)
	_, err = s.Update(Partial{JpegQuality: ptr(55)})
	require.NoError(t, err)
	_, err = s.Update(Partial{AutoStart: ptr(true), DailyReportTime: ptr("18:30")})
	require.NoError(t, err)

	want := Defaults()
	want.Interval = 30000
	want.JpegQuality = 55
	want.AutoStart = true
	want.DailyReportTime = "18:30"

	reloaded := NewStore(s.Path()).Load()
	assert.Equal(t, want, reloaded, "no previously set key is dropped")
}

func TestStore_UpdateRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	s.Load()

	calls := 0
	s.Subscribe(func(_, _ Configuration) { calls++ })

	cfg, err := s.Update(Partial{Interval: ptr(0), JpegQuality: ptr(101)})
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)

	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, Defaults(), s.Current())
	assert.Zero(t, calls)
}

func TestStore_UpdateNotifiesSubscribers(t *testing.T) {
	s := newTestStore(t)
	s.Load()

	var gotOld, gotNew Configuration
	calls := 0
	s.Subscribe(func(old, new Configuration) {
		calls++
		gotOld, gotNew = old, new
	})

	_, err := s.Update(Partial{Interval: ptr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 60000, gotOld.Interval)
	assert.Equal(t, 1000, gotNew.Interval)

	// No-op update does not notify.
	_, err = s.Update(Partial{Interval: ptr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestStore_UpdatePersistFailureKeepsValue(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// The parent of the document is a regular file so it can never be written.
	s := NewStore(filepath.Join(blocker, FileName))

	cfg, err := s.Update(Partial{Interval: ptr(2000)})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Equal(t, 2000, cfg.Interval)
	assert.Equal(t, 2000, s.Current().Interval)
}

func TestStore_ConcurrentUpdatesPersistLastValue(t *testing.T) {
	s := newTestStore(t)
	s.Load()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(secs int) {
			defer wg.Done()
			_, err := s.Update(Partial{Interval: ptr(secs * 1000)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc := readDoc(t, s.Path())
	assert.Equal(t, float64(s.Current().Interval), doc["interval"])
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore(t)
	s.Load()
	_, err := s.Update(Partial{GitEnabled: ptr(false), SaveDirectory: ptr("/tmp/wl")})
	require.NoError(t, err)

	cfg, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

// =============================================================================
// Reload
// =============================================================================

func TestStore_Reload(t *testing.T) {
	s := newTestStore(t)
	s.Load()

	var got Configuration
	s.Subscribe(func(_, new Configuration) { got = new })

	other := NewStore(s.Path())
	other.Load()
	_, err := other.Update(Partial{Interval: ptr(42000)})
	require.NoError(t, err)

	cfg, changed := s.Reload()
	assert.True(t, changed)
	assert.Equal(t, 42000, cfg.Interval)
	assert.Equal(t, 42000, got.Interval)

	_, changed = s.Reload()
	assert.False(t, changed)
}

func TestStore_ReloadIgnoresCorruptFile(t *testing.T) {
	s := newTestStore(t)
	s.Load()
	_, err := s.Update(Partial{Interval: ptr(9000)})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(), []byte("{"), 0o644))

	cfg, changed := s.Reload()
	assert.False(t, changed)
	assert.Equal(t, 9000, cfg.Interval)
}
