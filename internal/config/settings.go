package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/worklog/internal/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "worklog"

// Configuration is the user settings document, persisted as a flat JSON
// object. Absent keys take their default on load and unknown keys are ignored.
type Configuration struct {
	Interval          int    `json:"interval"` // milliseconds
	AutoStart         bool   `json:"autoStart"`
	Notifications     bool   `json:"notifications"`
	StartAtLogin      bool   `json:"startAtLogin"`
	GitEnabled        bool   `json:"gitEnabled"`
	CompressToJpeg    bool   `json:"compressToJpeg"`
	JpegQuality       int    `json:"jpegQuality"`
	CreateDailyReport bool   `json:"createDailyReport"`
	DailyReportTime   string `json:"dailyReportTime"`
	SaveDirectory     string `json:"saveDirectory"`
}

// Defaults returns the settings used when nothing has been persisted.
func Defaults() Configuration {
	return Configuration{
		Interval:          60000,
		AutoStart:         false,
		Notifications:     true,
		StartAtLogin:      false,
		GitEnabled:        true,
		CompressToJpeg:    true,
		JpegQuality:       80,
		CreateDailyReport: true,
		DailyReportTime:   "23:00",
		SaveDirectory:     "",
	}
}

// IntervalDuration returns the capture interval as a duration.
func (c Configuration) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Millisecond
}

// ReportTime parses DailyReportTime.
func (c Configuration) ReportTime() (TimeOfDay, error) {
	return ParseTimeOfDay(c.DailyReportTime)
}

// Root is the directory holding screenshots and reports.
func (c Configuration) Root() string {
	if c.SaveDirectory != "" {
		return c.SaveDirectory
	}
	return filepath.Join(xdg.DataHome, AppName)
}

// ScreenshotDir is the archive directory artifacts are written to.
func (c Configuration) ScreenshotDir() string {
	return filepath.Join(c.Root(), "screenshots")
}

// ReportDir is where generated report documents are written.
func (c Configuration) ReportDir() string {
	return filepath.Join(c.Root(), "reports")
}

// Partial is a shallow update. Nil fields are left untouched.
type Partial struct {
	Interval          *int    `json:"interval,omitempty"`
	AutoStart         *bool   `json:"autoStart,omitempty"`
	Notifications     *bool   `json:"notifications,omitempty"`
	StartAtLogin      *bool   `json:"startAtLogin,omitempty"`
	GitEnabled        *bool   `json:"gitEnabled,omitempty"`
	CompressToJpeg    *bool   `json:"compressToJpeg,omitempty"`
	JpegQuality       *int    `json:"jpegQuality,omitempty"`
	CreateDailyReport *bool   `json:"createDailyReport,omitempty"`
	DailyReportTime   *string `json:"dailyReportTime,omitempty"`
	SaveDirectory     *string `json:"saveDirectory,omitempty"`
}

// IsEmpty reports whether p sets nothing.
func (p Partial) IsEmpty() bool {
	return p == Partial{}
}

// Apply returns c with every field set in p overridden.
func (c Configuration) Apply(p Partial) Configuration {
	if p.Interval != nil {
		c.Interval = *p.Interval
	}
	if p.AutoStart != nil {
		c.AutoStart = *p.AutoStart
	}
	if p.Notifications != nil {
		c.Notifications = *p.Notifications
	}
	if p.StartAtLogin != nil {
		c.StartAtLogin = *p.StartAtLogin
	}
	if p.GitEnabled != nil {
		c.GitEnabled = *p.GitEnabled
	}
	if p.CompressToJpeg != nil {
		c.CompressToJpeg = *p.CompressToJpeg
	}
	if p.JpegQuality != nil {
		c.JpegQuality = *p.JpegQuality
	}
	if p.CreateDailyReport != nil {
		c.CreateDailyReport = *p.CreateDailyReport
	}
	if p.DailyReportTime != nil {
		c.DailyReportTime = *p.DailyReportTime
	}
	if p.SaveDirectory != nil {
		c.SaveDirectory = *p.SaveDirectory
	}
	return c
}

// TimeOfDay is a local wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24h "HH:MM" string. A single-digit hour is accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q (expected HH:MM)", errors.ErrInvalidTimeOfDay, s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
