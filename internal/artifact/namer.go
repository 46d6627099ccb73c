// Package artifact names capture files. Names encode the local capture time
// with zero-padded fields so that lexical order is chronological order.
package artifact

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

const (
	// Prefix starts every artifact and report file name.
	Prefix = "wl"

	ExtRaw        = ".png"
	ExtCompressed = ".jpg"

	dayLayout  = "20060102"
	timeLayout = "150405"
)

// namePattern is positional: prefix, date, time, extension.
var namePattern = regexp.MustCompile(`^` + Prefix + `_(\d{8})_(\d{2})(\d{2})(\d{2})\.(png|jpg)$`)

var reportPattern = regexp.MustCompile(`^` + Prefix + `_(\d{8})_report\.html$`)

// Artifact is one persisted screenshot.
type Artifact struct {
	Name       string
	Path       string
	TakenAt    time.Time
	Compressed bool
}

// Paths is where a capture is written first and where it ends up.
type Paths struct {
	Temp  string
	Final string
}

// Namer derives artifact paths inside a directory.
type Namer struct {
	Dir string
}

// NewNamer returns a namer rooted at dir.
func NewNamer(dir string) Namer {
	return Namer{Dir: dir}
}

// BaseName returns the extension-less name for t, e.g. wl_20240101_090000.
func BaseName(t time.Time) string {
	return fmt.Sprintf("%s_%s_%s", Prefix, t.Format(dayLayout), t.Format(timeLayout))
}

// FileName returns the final file name for t.
func FileName(t time.Time, compress bool) string {
	if compress {
		return BaseName(t) + ExtCompressed
	}
	return BaseName(t) + ExtRaw
}

// Name returns the temp and final paths for a capture taken at t.
// The temp file always carries the raw extension and is hidden with a
// leading dot so it is never picked up as an artifact.
func (n Namer) Name(t time.Time, compress bool) Paths {
	return Paths{
		Temp:  filepath.Join(n.Dir, "."+BaseName(t)+ExtRaw),
		Final: filepath.Join(n.Dir, FileName(t, compress)),
	}
}

// Parse extracts the capture time from an artifact file name, in loc.
// It reports false for anything that does not match the naming pattern.
func Parse(name string, loc *time.Location) (time.Time, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(dayLayout, m[1], loc)
	if err != nil {
		return time.Time{}, false
	}
	h, _ := strconv.Atoi(m[2])
	mi, _ := strconv.Atoi(m[3])
	s, _ := strconv.Atoi(m[4])
	if h > 23 || mi > 59 || s > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, mi, s, 0, loc), true
}

// IsCompressed reports whether name carries the compressed extension.
func IsCompressed(name string) bool {
	return filepath.Ext(name) == ExtCompressed
}

// DayKey formats day as YYYYMMDD.
func DayKey(day time.Time) string {
	return day.Format(dayLayout)
}

// DayPrefix is the name prefix shared by every artifact captured on day.
func DayPrefix(day time.Time) string {
	return Prefix + "_" + DayKey(day) + "_"
}

// DayPattern is a glob matching every artifact captured on day.
func DayPattern(day time.Time) string {
	return DayPrefix(day) + "*.{png,jpg}"
}

// ReportName is the report document name for day.
func ReportName(day time.Time) string {
	return DayPrefix(day) + "report.html"
}

// ParseReportName extracts the day from a report document name, in loc.
func ParseReportName(name string, loc *time.Location) (time.Time, bool) {
	m := reportPattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(dayLayout, m[1], loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
