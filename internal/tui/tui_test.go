package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/errors"
)

var t0 = time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local)

type fakeSource struct {
	status *daemon.Status
	calls  int
}

func (f *fakeSource) Status() *daemon.Status {
	f.calls++
	return f.status
}

type fakeController struct {
	sent []daemon.Control
	err  error
}

func (f *fakeController) Control(c daemon.Control) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, c)
	return nil
}

func runningStatus(recording bool) *daemon.Status {
	return &daemon.Status{
		Running: true,
		PID:     4242,
		Uptime:  90 * time.Minute,
		State: &daemon.State{
			PID:         4242,
			Recording:   recording,
			IntervalMs:  300000,
			LastCapture: t0.Add(-2 * time.Minute),
			NextReport:  time.Date(2024, 3, 5, 23, 0, 0, 0, time.Local),
			Metrics: daemon.MetricsSnapshot{
				CapturesTotal:  12,
				CapturesFailed: 1,
				ReportsBuilt:   2,
				ErrorsByKind:   map[errors.Kind]int64{errors.KindCapture: 1},
			},
			Health: &daemon.HealthStatus{Status: "healthy"},
		},
	}
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newModel(src *fakeSource, ctl Controller) *DashboardModel {
	m := NewDashboardModel(DashboardConfig{Source: src, Controller: ctl, Clock: clock.NewFake(t0)})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m.Update(refreshMsg{})
	return m
}

// =============================================================================
// ProgressBar Tests
// =============================================================================

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		width      int
	}{
		{"zero", 0, 10},
		{"half", 50, 10},
		{"full", 100, 10},
		{"over", 150, 10},
		{"negative", -10, 10},
		{"zero_width", 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ProgressBar(tt.percentage, tt.width)
			assert.NotEmpty(t, bar)
		})
	}
}

func TestProgressBarWidth(t *testing.T) {
	bar10 := ProgressBar(50, 10)
	bar20 := ProgressBar(50, 20)
	assert.Greater(t, len(bar20), len(bar10))
}

// =============================================================================
// Component Tests
// =============================================================================

func TestStatusComponent_NotRunning(t *testing.T) {
	sc := NewStatusComponent(&daemon.Status{}, t0, 80)
	assert.False(t, sc.Recording())
	assert.Contains(t, sc.View(), "Daemon not running")

	assert.Contains(t, NewStatusComponent(nil, t0, 80).View(), "Daemon not running")
}

func TestStatusComponent_Recording(t *testing.T) {
	sc := NewStatusComponent(runningStatus(true), t0, 80)
	require.True(t, sc.Recording())

	view := sc.View()
	assert.Contains(t, view, "RECORDING")
	assert.Contains(t, view, "PID 4242")
	assert.Contains(t, view, "5m")
	assert.Contains(t, view, "Next capture 09:03")
}

func TestStatusComponent_Paused(t *testing.T) {
	view := NewStatusComponent(runningStatus(false), t0, 80).View()
	assert.Contains(t, view, "PAUSED")
	assert.NotContains(t, view, "Next capture")
}

func TestStatusComponent_LastError(t *testing.T) {
	st := runningStatus(true)
	st.State.LastError = "capture failed during capture: boom"
	assert.Contains(t, NewStatusComponent(st, t0, 80).View(), "boom")
}

func TestMetricsComponent(t *testing.T) {
	assert.Nil(t, NewMetricsComponent(nil, 80))
	assert.Empty(t, (*MetricsComponent)(nil).View())

	view := NewMetricsComponent(runningStatus(true).State, 80).View()
	assert.Contains(t, view, "12")
	assert.Contains(t, view, "capture 1")
	assert.Contains(t, view, "healthy")
}

func TestMetricsComponent_Unhealthy(t *testing.T) {
	st := runningStatus(true).State
	st.Health = &daemon.HealthStatus{
		Status: "unhealthy",
		Checks: []daemon.CheckResult{{Name: "disk", Healthy: false}, {Name: "journal", Healthy: true}},
	}
	view := NewMetricsComponent(st, 80).View()
	assert.Contains(t, view, "unhealthy: disk")
	assert.NotContains(t, view, "journal")
}

func TestHelpBar(t *testing.T) {
	bar := HelpBar()
	for _, want := range []string{"space", "toggle recording", "report today", "quit"} {
		assert.Contains(t, bar, want)
	}
}

// =============================================================================
// Dashboard Tests
// =============================================================================

func TestDashboard_LoadingBeforeSize(t *testing.T) {
	m := NewDashboardModel(DashboardConfig{Source: &fakeSource{}, Clock: clock.NewFake(t0)})
	assert.Equal(t, "Loading...", m.View())
	assert.NotNil(t, m.Init())
}

func TestDashboard_View(t *testing.T) {
	src := &fakeSource{status: runningStatus(true)}
	m := newModel(src, &fakeController{})

	view := m.View()
	assert.Contains(t, view, "WorkLog")
	assert.Contains(t, view, "RECORDING")
	assert.Contains(t, view, "Since start")
	assert.Equal(t, 1, src.calls)
}

func TestDashboard_Toggle(t *testing.T) {
	ctl := &fakeController{}
	m := newModel(&fakeSource{status: runningStatus(true)}, ctl)

	_, cmd := m.Update(key('t'))
	require.NotNil(t, cmd)
	assert.Equal(t, []daemon.Control{daemon.ControlToggle}, ctl.sent)
	assert.Contains(t, m.View(), "Stopping recording")
}

func TestDashboard_Report(t *testing.T) {
	ctl := &fakeController{}
	m := newModel(&fakeSource{status: runningStatus(false)}, ctl)

	m.Update(key('r'))
	assert.Equal(t, []daemon.Control{daemon.ControlReport}, ctl.sent)
	assert.Contains(t, m.View(), "Building today's report")
}

func TestDashboard_ControlError(t *testing.T) {
	ctl := &fakeController{err: fmt.Errorf("send: %w", errors.ErrDaemonNotRunning)}
	m := newModel(&fakeSource{status: &daemon.Status{}}, ctl)

	_, cmd := m.Update(key('t'))
	assert.Nil(t, cmd)
	view := m.View()
	assert.Contains(t, view, "daemon is not running")
	assert.Contains(t, view, "worklog daemon start")
}

func TestDashboard_NoController(t *testing.T) {
	m := newModel(&fakeSource{status: runningStatus(true)}, nil)
	m.Update(key('r'))
	assert.Contains(t, m.View(), "not supported")
}

func TestDashboard_MessageExpires(t *testing.T) {
	src := &fakeSource{status: runningStatus(true)}
	m := newModel(src, &fakeController{})

	m.Update(key('u'))
	assert.Contains(t, m.View(), "Refreshed")

	_, cmd := m.Update(tickMsg(t0.Add(5 * time.Second)))
	assert.NotNil(t, cmd)
	assert.False(t, strings.Contains(m.View(), "Refreshed"))
	assert.Equal(t, 3, src.calls)
}

func TestDashboard_Quit(t *testing.T) {
	m := newModel(&fakeSource{}, nil)
	_, cmd := m.Update(key('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
