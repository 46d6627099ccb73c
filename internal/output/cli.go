package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/worklog/internal/model"
	"github.com/manav03panchal/worklog/internal/report"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(14)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Field prints an aligned "label value" line.
func (c *CLIFormatter) Field(label, value string) {
	if c.IsColorEnabled() {
		c.Printf("  %s%s\n", styleLabel.Render(label), value)
		return
	}
	c.Printf("  %-14s%s\n", label, value)
}

// RecordingState formats the recording state word.
func (c *CLIFormatter) RecordingState(recording bool) string {
	if recording {
		return c.render(styleSuccess, "● recording")
	}
	return c.render(styleMuted, "○ stopped")
}

// PrintStatus prints the daemon status.
func (c *CLIFormatter) PrintStatus(s *StatusOutput) {
	if !s.Running {
		c.Warning("Daemon is not running")
		c.Muted("Start it with 'worklog daemon start'.")
		return
	}

	c.Title("WorkLog daemon")
	c.Field("PID", fmt.Sprintf("%d", s.PID))
	c.Field("Uptime", FormatDuration(s.Uptime))
	c.Field("State", c.RecordingState(s.Recording))
	c.Field("Interval", s.Interval)
	if !s.LastCapture.IsZero() {
		c.Field("Last capture", FormatTime(s.LastCapture))
	}
	if s.LastError != "" {
		c.Field("Last error", c.render(styleError, s.LastError))
	}
	if !s.NextReport.IsZero() {
		c.Field("Next report", FormatTime(s.NextReport))
	}
	c.Field("Save to", s.Root)
	if s.Commits > 0 {
		c.Field("Commits", fmt.Sprintf("%d", s.Commits))
	}
}

// PrintConfig prints settings as aligned key/value pairs.
func (c *CLIFormatter) PrintConfig(path string, entries []ConfigEntry) {
	c.Title("Settings")
	c.Muted(path)
	c.Println()
	for _, e := range entries {
		c.Printf("  %s = %s\n", c.render(styleBold, fmt.Sprintf("%-18s", e.Key)), e.Value)
		if e.Help != "" {
			c.Printf("  %s\n", c.render(styleMuted, strings.Repeat(" ", 21)+e.Help))
		}
	}
}

// PrintCaptures prints a day's capture journal.
func (c *CLIFormatter) PrintCaptures(records []*model.CaptureRecord) {
	if len(records) == 0 {
		c.Muted("No captures recorded for this day.")
		return
	}

	rows := make([]TableRow, 0, len(records))
	for _, r := range records {
		status := "ok"
		switch {
		case r.Failed():
			status = "failed"
		case r.Error != "":
			status = "not committed"
		case r.Committed:
			status = "committed"
		}
		rows = append(rows, TableRow{Columns: []string{
			FormatTimeOnly(r.TakenAt),
			r.Name,
			fmt.Sprintf("%dms", r.DurationMs),
			status,
		}})
	}
	c.PrintTable([]string{"TIME", "FILE", "TOOK", "STATUS"}, rows)

	for _, r := range records {
		if r.Error != "" {
			c.Println()
			c.Muted(FormatTimeOnly(r.TakenAt) + "  " + r.Error)
		}
	}
}

// PrintReport prints the result of building a report.
func (c *CLIFormatter) PrintReport(doc *report.Document) {
	if doc == nil {
		c.Muted("No screenshots for this day, nothing written.")
		return
	}
	c.Success(fmt.Sprintf("Report written: %s", doc.Path))
	c.Field("Screenshots", fmt.Sprintf("%d", doc.Total))
	c.Field("Hours", fmt.Sprintf("%d", len(doc.Buckets)))
}

// TableRow is one row of PrintTable output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && len(col) > widths[i] {
				widths[i] = len(col)
			}
		}
	}

	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], h))
	}
	c.Println(c.render(styleBold, strings.TrimRight(headerLine.String(), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], col))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}
