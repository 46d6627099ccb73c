package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wlerrors "github.com/manav03panchal/worklog/internal/errors"
)

// =============================================================================
// HealthChecker Tests
// =============================================================================

func TestNewHealthChecker(t *testing.T) {
	checker := NewHealthChecker("1.0.0")
	assert.NotNil(t, checker)
	assert.Equal(t, "1.0.0", checker.version)
}

func TestHealthCheckerCheck(t *testing.T) {
	checker := NewHealthChecker("1.0.0")

	status := checker.Check()
	assert.NotNil(t, status)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.GreaterOrEqual(t, status.Goroutines, 1)
	assert.GreaterOrEqual(t, status.MemoryMB, 0.0)
	assert.Empty(t, status.Checks)
}

func TestHealthCheckerAddRemoveCheck(t *testing.T) {
	checker := NewHealthChecker("1.0.0")

	checker.AddCheck("journal", func() error { return nil })
	checker.AddCheck("disk", func() error {
		return errors.New("disk full")
	})

	status := checker.Check()
	assert.Equal(t, "unhealthy", status.Status)
	require.Len(t, status.Checks, 2)
	assert.Equal(t, "disk", status.Checks[0].Name)
	assert.False(t, status.Checks[0].Healthy)
	assert.Equal(t, "disk full", status.Checks[0].Error)
	assert.Equal(t, "journal", status.Checks[1].Name)
	assert.True(t, status.Checks[1].Healthy)

	checker.RemoveCheck("disk")

	status = checker.Check()
	assert.Equal(t, "healthy", status.Status)
}

// =============================================================================
// Metrics Tests
// =============================================================================

func TestMetricsRecordCapture(t *testing.T) {
	m := NewMetrics()
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	m.RecordCapture(at, 1500*time.Millisecond, nil)
	m.RecordCapture(at.Add(time.Minute), time.Second, wlerrors.NewArchiveError("commit", "/tmp", errors.New("lock")))
	m.RecordCapture(at.Add(2*time.Minute), time.Second, wlerrors.NewCaptureError("capture", "", wlerrors.ErrPermissionDenied))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.CapturesTotal)
	assert.Equal(t, int64(1), snap.CapturesFailed)
	assert.Equal(t, int64(1), snap.ArchiveFailures)
	require.NotNil(t, snap.LastCaptureAt)
	assert.Equal(t, at.Add(time.Minute), *snap.LastCaptureAt, "archive failures still leave an artifact")
	assert.Equal(t, int64(1000), snap.LastCaptureMs)
	assert.Contains(t, snap.LastError, "permission denied")
	assert.NotNil(t, snap.LastErrorAt)
	assert.Equal(t, int64(1), snap.ErrorsByKind[wlerrors.KindArchive])
	assert.Equal(t, int64(1), snap.ErrorsByKind[wlerrors.KindCapture])
}

func TestMetricsRecordReport(t *testing.T) {
	m := NewMetrics()
	at := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)

	m.RecordReport(at, nil)
	m.RecordReport(at, wlerrors.NewReportError("write", "/r", errors.New("denied")))

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.ReportsBuilt)
	assert.Equal(t, int64(1), snap.ReportsFailed)
	require.NotNil(t, snap.LastReportAt)
	assert.Equal(t, at, *snap.LastReportAt)
	assert.Equal(t, int64(1), snap.ErrorsByKind[wlerrors.KindReport])
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordCapture(time.Now(), time.Second, errors.New("boom"))
	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.CapturesTotal)
	assert.Zero(t, snap.CapturesFailed)
	assert.Nil(t, snap.LastCaptureAt)
	assert.Nil(t, snap.LastErrorAt)
	assert.Empty(t, snap.LastError)
	assert.Nil(t, snap.ErrorsByKind)
}

// =============================================================================
// PID and State File Tests
// =============================================================================

func TestPIDFile(t *testing.T) {
	pf := NewPIDFile(t.TempDir())

	_, err := pf.Read()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.False(t, pf.IsRunning())

	require.NoError(t, pf.Write())
	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, pf.IsRunning())
	assert.Equal(t, os.Getpid(), pf.RunningPID())

	require.NoError(t, pf.Remove())
	require.NoError(t, pf.Remove(), "removing twice is fine")
	assert.False(t, pf.IsRunning())
}

func TestPIDFileInvalidContent(t *testing.T) {
	dir := t.TempDir()
	pf := NewPIDFile(dir)
	require.NoError(t, os.WriteFile(pf.Path(), []byte("not-a-pid"), 0o644))

	_, err := pf.Read()
	assert.Error(t, err)
	assert.Zero(t, pf.RunningPID())
}

func TestStateFileRoundTrip(t *testing.T) {
	sf := NewStateFile(t.TempDir())
	started := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	st := &State{
		PID:        42,
		StartedAt:  started,
		Recording:  true,
		IntervalMs: 60000,
		Root:       "/home/me/WorkLog",
		Metrics:    MetricsSnapshot{CapturesTotal: 7},
	}
	require.NoError(t, sf.Write(st))

	data, err := os.ReadFile(sf.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "last_capture", "zero times are omitted")

	got, err := sf.Read()
	require.NoError(t, err)
	assert.Equal(t, 42, got.PID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.Recording)
	assert.Equal(t, int64(7), got.Metrics.CapturesTotal)

	require.NoError(t, sf.Remove())
	_, err = sf.Read()
	assert.True(t, os.IsNotExist(err))
}

// =============================================================================
// Log File Tests
// =============================================================================

func TestLogFileRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	lf, err := OpenLogFile(path)
	require.NoError(t, err)
	defer lf.Close()

	_, err = lf.Write([]byte("first line\n"))
	require.NoError(t, err)

	rotated, err := lf.Rotate(1 << 20)
	require.NoError(t, err)
	assert.False(t, rotated, "below the size limit")

	rotated, err = lf.Rotate(4)
	require.NoError(t, err)
	assert.True(t, rotated)

	_, err = lf.Write([]byte("second line\n"))
	require.NoError(t, err)

	old, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Equal(t, "first line\n", string(old))

	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second line\n", string(cur))
}

func TestRecentLogs(t *testing.T) {
	d := New(t.TempDir())

	_, err := d.RecentLogs(5)
	assert.Error(t, err)

	var b strings.Builder
	for i := 1; i <= 20; i++ {
		b.WriteString("line " + strconv.Itoa(i) + "\n")
	}
	require.NoError(t, os.WriteFile(d.LogPath(), []byte(b.String()), 0o644))

	lines, err := d.RecentLogs(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 18", "line 19", "line 20"}, lines)

	all, err := d.RecentLogs(0)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestLastLogError(t *testing.T) {
	d := New(t.TempDir())
	assert.Empty(t, d.lastLogError())

	content := "level=INFO msg=start\nlevel=ERROR msg=\"cannot open journal\"\nlevel=INFO msg=bye\n"
	require.NoError(t, os.WriteFile(d.LogPath(), []byte(content), 0o644))
	assert.Equal(t, `level=ERROR msg="cannot open journal"`, d.lastLogError())
}

// =============================================================================
// Daemon Manager Tests
// =============================================================================

func TestStatusNotRunning(t *testing.T) {
	d := New(t.TempDir())

	status := d.Status()
	assert.False(t, status.Running)
	assert.Zero(t, status.PID)
	assert.Nil(t, status.State)
	assert.False(t, d.IsRunning())
}

func TestStatusRunning(t *testing.T) {
	dir := t.TempDir()
	d := New(dir)
	require.NoError(t, NewPIDFile(dir).Write())
	require.NoError(t, NewStateFile(dir).Write(&State{
		PID:       os.Getpid(),
		StartedAt: time.Now().Add(-time.Hour),
		Recording: true,
	}))

	status := d.Status()
	assert.True(t, status.Running)
	assert.Equal(t, os.Getpid(), status.PID)
	require.NotNil(t, status.State)
	assert.True(t, status.State.Recording)
	assert.GreaterOrEqual(t, status.Uptime, time.Hour)
}

func TestStopAndControlNotRunning(t *testing.T) {
	d := New(t.TempDir())
	assert.ErrorIs(t, d.Stop(), ErrNotRunning)
	assert.ErrorIs(t, d.Control(ControlToggle), wlerrors.ErrDaemonNotRunning)
}

func TestControlString(t *testing.T) {
	assert.Equal(t, "toggle", ControlToggle.String())
	assert.Equal(t, "report", ControlReport.String())
	assert.Equal(t, "unknown", Control(0).String())
	assert.True(t, Event{}.Shutdown())
	assert.False(t, Event{Control: ControlReport}.Shutdown())
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.d))
	}
}

func TestStatusOutput(t *testing.T) {
	next := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)
	s := &Status{
		Running: true,
		PID:     99,
		Uptime:  90 * time.Second,
		State: &State{
			Recording:  true,
			IntervalMs: 300000,
			NextReport: next,
			Root:       "/tmp/wl",
			LastError:  "boom",
		},
	}

	out := s.Output()
	assert.True(t, out.Running)
	assert.Equal(t, 99, out.PID)
	assert.Equal(t, int64(90), out.UptimeSecs)
	assert.True(t, out.Recording)
	assert.Equal(t, "5m", out.Interval)
	assert.Equal(t, next, out.NextReport)
	assert.Equal(t, "/tmp/wl", out.Root)
	assert.Equal(t, "boom", out.LastError)

	stopped := (&Status{}).Output()
	assert.False(t, stopped.Running)
	assert.Empty(t, stopped.Interval)
}
