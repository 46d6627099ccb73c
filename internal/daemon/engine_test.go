package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/worklog/internal/artifact"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	wlerrors "github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/report"
	"github.com/manav03panchal/worklog/internal/scheduler"
)

var t0 = time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local)

type stubCapturer struct {
	clock *clock.Fake

	mu    sync.Mutex
	calls int
	err   error
}

func (c *stubCapturer) Capture(context.Context) (*artifact.Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	now := c.clock.Now()
	if c.err != nil && !wlerrors.IsArchiveError(c.err) {
		return nil, c.err
	}
	return &artifact.Artifact{Name: artifact.FileName(now, true), TakenAt: now}, c.err
}

func (c *stubCapturer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type stubBuilder struct {
	days []time.Time
	doc  *report.Document
	err  error
}

func (b *stubBuilder) Build(_ context.Context, day time.Time) (*report.Document, error) {
	b.days = append(b.days, day)
	return b.doc, b.err
}

type stubGate struct{}

func (stubGate) IsGranted() bool      { return true }
func (stubGate) RequestAccess() error { return nil }

type stubNotifier struct{}

func (stubNotifier) Notify(string, string) {}

type engineFixture struct {
	clock    *clock.Fake
	store    *config.Store
	capturer *stubCapturer
	builder  *stubBuilder
	changes  atomic.Int32
	engine   *Engine
}

func newEngineFixture(t *testing.T, p config.Partial) *engineFixture {
	t.Helper()
	fc := clock.NewFake(t0)
	store := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	store.Load()
	if !p.IsEmpty() {
		_, err := store.Update(p)
		require.NoError(t, err)
	}

	f := &engineFixture{
		clock:    fc,
		store:    store,
		capturer: &stubCapturer{clock: fc},
		builder:  &stubBuilder{},
	}
	f.engine = NewEngine(EngineOptions{
		Clock:    fc,
		Store:    store,
		Capturer: f.capturer,
		Gate:     stubGate{},
		Builder:  f.builder,
		Notifier: stubNotifier{},
		OnChange: func() { f.changes.Add(1) },
	})
	return f
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestEngine_StartWithoutAutoStart(t *testing.T) {
	f := newEngineFixture(t, config.Partial{})

	require.NoError(t, f.engine.Start(context.Background()))

	assert.False(t, f.engine.Recording())
	assert.Zero(t, f.capturer.Calls())
	assert.Equal(t, 1, f.clock.Pending(), "only the daily report is armed")

	snap := f.engine.Snapshot()
	assert.Equal(t, time.Date(2024, 3, 5, 23, 0, 0, 0, time.Local), snap.NextReport)
	assert.Equal(t, int64(60000), snap.IntervalMs)
	assert.Equal(t, f.store.Current().Root(), snap.Root)
}

func TestEngine_AutoStartRecords(t *testing.T) {
	f := newEngineFixture(t, config.Partial{AutoStart: boolPtr(true)})

	require.NoError(t, f.engine.Start(context.Background()))

	assert.True(t, f.engine.Recording())
	assert.Equal(t, 1, f.capturer.Calls())
	assert.Equal(t, 2, f.clock.Pending())
	assert.Positive(t, f.changes.Load())

	f.clock.Advance(time.Minute)
	assert.Equal(t, 2, f.capturer.Calls())

	snap := f.engine.Snapshot()
	assert.True(t, snap.Recording)
	assert.Equal(t, t0.Add(time.Minute), snap.LastCapture)
	assert.Equal(t, int64(2), snap.Metrics.CapturesTotal)
}

func TestEngine_IntervalChangeRearms(t *testing.T) {
	f := newEngineFixture(t, config.Partial{AutoStart: boolPtr(true)})
	require.NoError(t, f.engine.Start(context.Background()))

	_, err := f.store.Update(config.Partial{Interval: intPtr(30000)})
	require.NoError(t, err)

	f.clock.Advance(30 * time.Second)
	assert.Equal(t, 2, f.capturer.Calls())
	assert.Equal(t, int64(30000), f.engine.Snapshot().IntervalMs)
}

func TestEngine_DisableDailyReport(t *testing.T) {
	f := newEngineFixture(t, config.Partial{})
	require.NoError(t, f.engine.Start(context.Background()))
	require.Equal(t, 1, f.clock.Pending())

	_, err := f.store.Update(config.Partial{CreateDailyReport: boolPtr(false)})
	require.NoError(t, err)

	assert.Zero(t, f.clock.Pending())
	assert.True(t, f.engine.Snapshot().NextReport.IsZero())
}

func TestEngine_Toggle(t *testing.T) {
	f := newEngineFixture(t, config.Partial{})
	ctx := context.Background()

	state, err := f.engine.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, scheduler.Recording, state)

	state, err = f.engine.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, scheduler.Stopped, state)
	assert.Equal(t, 1, f.capturer.Calls())
}

func TestEngine_FailedAutoStart(t *testing.T) {
	f := newEngineFixture(t, config.Partial{AutoStart: boolPtr(true)})
	f.capturer.err = wlerrors.NewCaptureError("capture", "", errors.New("no display"))

	err := f.engine.Start(context.Background())
	assert.True(t, wlerrors.IsCaptureError(err))
	assert.False(t, f.engine.Recording())

	snap := f.engine.Snapshot()
	assert.Contains(t, snap.LastError, "no display")
	assert.Equal(t, int64(1), snap.Metrics.CapturesFailed)
}

func TestEngine_BuildReport(t *testing.T) {
	f := newEngineFixture(t, config.Partial{})
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)

	doc, err := f.engine.BuildReport(context.Background(), day)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Zero(t, f.engine.Snapshot().Metrics.ReportsBuilt, "an empty day builds nothing")

	f.builder.doc = &report.Document{Day: day, Total: 3}
	doc, err = f.engine.BuildReport(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Total)
	assert.Equal(t, int64(1), f.engine.Snapshot().Metrics.ReportsBuilt)
	assert.Equal(t, []time.Time{day, day}, f.builder.days)
	assert.Equal(t, int32(2), f.changes.Load())
}

func TestEngine_Shutdown(t *testing.T) {
	f := newEngineFixture(t, config.Partial{AutoStart: boolPtr(true)})
	require.NoError(t, f.engine.Start(context.Background()))
	require.Equal(t, 2, f.clock.Pending())

	f.engine.Shutdown()

	assert.Zero(t, f.clock.Pending())
	assert.False(t, f.engine.Recording())
	f.clock.Advance(time.Hour)
	assert.Equal(t, 1, f.capturer.Calls())
}
