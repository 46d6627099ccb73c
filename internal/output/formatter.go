// Package output formats command results for the terminal or as JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/manav03panchal/worklog/internal/errors"
)

// Format selects how command results are written.
type Format string

const (
	FormatCLI   Format = "cli"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ColorMode selects whether CLI output is styled.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCLI, FormatJSON, FormatPlain:
		return f, nil
	case "":
		return FormatCLI, nil
	}
	return "", errors.NewUserErrorWithField("format", s, "unknown output format",
		"Use one of: cli, json, plain.")
}

// ParseColorMode validates a --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	}
	return "", errors.NewUserErrorWithField("color", s, "unknown color mode",
		"Use one of: auto, always, never.")
}

// Formatter writes results to Writer and diagnostics to ErrWriter.
type Formatter struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Format    Format
	ColorMode ColorMode
}

// NewFormatter creates a formatter on stdout and stderr.
func NewFormatter() *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Format:    FormatCLI,
		ColorMode: ColorAuto,
	}
}

// IsColorEnabled reports whether CLI output should be styled. In auto mode
// NO_COLOR disables color and plain format never has it.
func (f *Formatter) IsColorEnabled() bool {
	switch f.ColorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if f.Format == FormatPlain || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if w, ok := f.Writer.(*os.File); ok {
		return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	}
	return false
}

func (f *Formatter) Print(a ...any) {
	fmt.Fprint(f.Writer, a...)
}

func (f *Formatter) Println(a ...any) {
	fmt.Fprintln(f.Writer, a...)
}

func (f *Formatter) Printf(format string, a ...any) {
	fmt.Fprintf(f.Writer, format, a...)
}

// Debugf writes a diagnostic line to ErrWriter.
func (f *Formatter) Debugf(format string, a ...any) {
	w := f.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "[debug] "+format+"\n", a...)
}

// JSON writes v as indented JSON.
func (f *Formatter) JSON(v any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatDuration renders d with its two largest units, e.g. "1h 30m" or "5m 30s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	big, small := "m", "s"
	hi, lo := int(d/time.Minute), int(d%time.Minute/time.Second)
	if d >= time.Hour {
		big, small = "h", "m"
		hi, lo = int(d/time.Hour), int(d%time.Hour/time.Minute)
	}
	if lo == 0 {
		return fmt.Sprintf("%d%s", hi, big)
	}
	return fmt.Sprintf("%d%s %d%s", hi, big, lo, small)
}

// FormatTime formats an instant in the local timezone.
func FormatTime(t time.Time) string {
	return t.Local().Format(time.DateTime)
}

func FormatDate(t time.Time) string {
	return t.Local().Format(time.DateOnly)
}

func FormatTimeOnly(t time.Time) string {
	return t.Local().Format(time.TimeOnly)
}

// FormatRelative formats t relative to now, e.g. "in 2h 5m" or "3m ago".
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := t.Sub(now).Round(time.Second)
	if d >= 0 {
		return "in " + FormatDuration(d)
	}
	return FormatDuration(-d) + " ago"
}
