package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/output"
)

// StatusComponent displays whether the daemon is up and recording.
type StatusComponent struct {
	Status *daemon.Status
	Now    time.Time
	Width  int
}

// NewStatusComponent creates a new status component.
func NewStatusComponent(status *daemon.Status, now time.Time, width int) *StatusComponent {
	return &StatusComponent{Status: status, Now: now, Width: width}
}

// Recording reports whether the last known state has recording on.
func (sc *StatusComponent) Recording() bool {
	return sc.Status != nil && sc.Status.Running && sc.Status.State != nil && sc.Status.State.Recording
}

// View renders the status component.
func (sc *StatusComponent) View() string {
	var content strings.Builder

	if sc.Status == nil || !sc.Status.Running {
		content.WriteString(StyleIdle.Render("Daemon not running"))
		content.WriteString("\n\n")
		content.WriteString(StyleSubtitle.Render("Start it with 'worklog daemon start'"))
		return StyleStatusBox.Width(sc.boxWidth()).Render(content.String())
	}

	st := sc.Status.State
	if !sc.Recording() {
		content.WriteString(StyleIdle.Render("○ PAUSED"))
	} else {
		content.WriteString(StyleRecording.Render("● RECORDING"))
	}
	content.WriteString("\n\n")
	content.WriteString(StyleSubtitle.Render(fmt.Sprintf("PID %d, up %s", sc.Status.PID, daemon.FormatUptime(sc.Status.Uptime))))

	if st == nil {
		return StyleStatusBox.Width(sc.boxWidth()).Render(content.String())
	}

	interval := time.Duration(st.IntervalMs) * time.Millisecond
	content.WriteString("\n")
	content.WriteString(StyleSubtitle.Render("Every "))
	content.WriteString(StyleValue.Render(output.FormatDuration(interval)))

	if !st.LastCapture.IsZero() {
		content.WriteString("\n")
		content.WriteString(StyleSubtitle.Render("Last capture: " + output.FormatRelative(st.LastCapture, sc.Now)))
	}

	if sc.Recording() && !st.LastCapture.IsZero() && interval > 0 {
		next := st.LastCapture.Add(interval)
		elapsed := sc.Now.Sub(st.LastCapture)
		content.WriteString("\n\n")
		content.WriteString(ProgressBar(100*float64(elapsed)/float64(interval), sc.barWidth()))
		content.WriteString("\n")
		content.WriteString(StyleSubtitle.Render("Next capture " + output.FormatTimeOnly(next)))
	}

	if !st.NextReport.IsZero() {
		content.WriteString("\n")
		content.WriteString(StyleSubtitle.Render("Next report " + output.FormatTime(st.NextReport)))
	}

	if st.LastError != "" {
		content.WriteString("\n\n")
		content.WriteString(StyleError.Render(st.LastError))
	}

	box := StyleStatusBox
	if sc.Recording() {
		box = StyleRecordingBox
	}
	return box.Width(sc.boxWidth()).Render(content.String())
}

func (sc *StatusComponent) boxWidth() int {
	if sc.Width < 24 {
		return 20
	}
	return sc.Width - 4
}

func (sc *StatusComponent) barWidth() int {
	w := sc.Width - 12
	if w < 10 {
		w = 10
	}
	return w
}

// MetricsComponent displays the daemon's capture and report counters.
type MetricsComponent struct {
	Metrics daemon.MetricsSnapshot
	Health  *daemon.HealthStatus
	Width   int
}

// NewMetricsComponent creates a metrics component from a daemon state.
// It returns nil when there is no state to show.
func NewMetricsComponent(st *daemon.State, width int) *MetricsComponent {
	if st == nil {
		return nil
	}
	return &MetricsComponent{Metrics: st.Metrics, Health: st.Health, Width: width}
}

// View renders the metrics component.
func (mc *MetricsComponent) View() string {
	if mc == nil {
		return ""
	}

	m := mc.Metrics
	rows := [][2]string{
		{"Captures", fmt.Sprintf("%d", m.CapturesTotal)},
		{"Failed", fmt.Sprintf("%d", m.CapturesFailed)},
		{"Not archived", fmt.Sprintf("%d", m.ArchiveFailures)},
		{"Reports", fmt.Sprintf("%d", m.ReportsBuilt)},
	}
	if m.ReportsFailed > 0 {
		rows = append(rows, [2]string{"Reports failed", fmt.Sprintf("%d", m.ReportsFailed)})
	}
	if m.LastCaptureMs > 0 {
		rows = append(rows, [2]string{"Capture took", fmt.Sprintf("%dms", m.LastCaptureMs)})
	}

	var content strings.Builder
	content.WriteString(StyleTitle.Render("Since start"))
	content.WriteString("\n")
	for i, r := range rows {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(StyleSubtitle.Render(fmt.Sprintf("%-15s", r[0])))
		content.WriteString(StyleValue.Render(r[1]))
	}

	if len(m.ErrorsByKind) > 0 {
		kinds := make([]string, 0, len(m.ErrorsByKind))
		for k, n := range m.ErrorsByKind {
			kinds = append(kinds, fmt.Sprintf("%s %d", k, n))
		}
		sort.Strings(kinds)
		content.WriteString("\n\n")
		content.WriteString(StyleWarning.Render("Errors: " + strings.Join(kinds, ", ")))
	}

	if mc.Health != nil {
		content.WriteString("\n\n")
		if mc.Health.Status == "healthy" {
			content.WriteString(StyleSuccess.Render("✓ healthy"))
		} else {
			var failing []string
			for _, c := range mc.Health.Checks {
				if !c.Healthy {
					failing = append(failing, c.Name)
				}
			}
			content.WriteString(StyleError.Render("✗ " + mc.Health.Status + ": " + strings.Join(failing, ", ")))
		}
	}

	w := mc.Width - 4
	if w < 20 {
		w = 20
	}
	return StyleMetricsBox.Width(w).Render(content.String())
}

// HelpBar renders the help bar at the bottom.
func HelpBar() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"space", "toggle recording"},
		{"r", "report today"},
		{"u", "refresh"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, StyleHelpKey.Render(k.key)+" "+StyleHelpDesc.Render(k.desc))
	}

	return StyleHelp.Render(strings.Join(parts, "  •  "))
}

// header renders the title line.
func header(now time.Time) string {
	title := StyleTitle.Render("WorkLog")
	clock := StyleSubtitle.Render(now.Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", clock) + "\n"
}
