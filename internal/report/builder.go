// Package report assembles a day's screenshots into a static HTML document
// grouped by hour.
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/manav03panchal/worklog/internal/artifact"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/storage"
)

// Document is a rendered daily report.
type Document struct {
	Day         time.Time
	Buckets     []Bucket
	Total       int
	GeneratedAt time.Time
	Path        string
}

// Bucket holds the items captured within one hour.
type Bucket struct {
	Hour   int
	Label  string
	Anchor string
	Items  []Item
}

// Item is one screenshot in a bucket.
type Item struct {
	Name string
	Time string
	Href string
}

// ConfigSource provides the current configuration.
type ConfigSource interface {
	Current() config.Configuration
}

// Builder builds report documents from the screenshot directory.
type Builder struct {
	cfg   ConfigSource
	clock clock.Clock
}

// NewBuilder creates a builder. A nil clock uses the real one.
func NewBuilder(cfg ConfigSource, c clock.Clock) *Builder {
	if c == nil {
		c = clock.New()
	}
	return &Builder{cfg: cfg, clock: c}
}

// Build writes the report for day. When no screenshot from that day exists
// it returns (nil, nil) and writes nothing.
func (b *Builder) Build(ctx context.Context, day time.Time) (*Document, error) {
	cfg := b.cfg.Current()
	src := cfg.ScreenshotDir()

	names, err := dayArtifacts(src, day)
	if err != nil {
		return nil, errors.NewReportError("list", src, err)
	}

	buckets, total := group(names, day.Location(), hrefBase(cfg.ReportDir(), src))
	if total == 0 {
		logging.DebugLog("no screenshots for report", logging.KeyDay, artifact.DayKey(day))
		return nil, nil
	}

	doc := &Document{
		Day:         day,
		Buckets:     buckets,
		Total:       total,
		GeneratedAt: b.clock.Now(),
		Path:        filepath.Join(cfg.ReportDir(), artifact.ReportName(day)),
	}

	var buf bytes.Buffer
	if err := render(&buf, doc); err != nil {
		return nil, errors.NewReportError("render", doc.Path, err)
	}
	if err := storage.EnsureDirectory(cfg.ReportDir()); err != nil {
		return nil, errors.NewReportError("write", doc.Path, err)
	}
	if err := storage.SafeWrite(doc.Path, buf.Bytes(), 0o644); err != nil {
		return nil, errors.NewReportError("write", doc.Path, err)
	}

	logging.InfoContext(ctx, "report written",
		logging.KeyDay, artifact.DayKey(day),
		logging.KeyPath, doc.Path,
		logging.KeyCount, doc.Total,
	)
	return doc, nil
}

// dayArtifacts lists the artifact names in dir that belong to day, sorted.
// A missing directory has no artifacts.
func dayArtifacts(dir string, day time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	pattern := artifact.DayPattern(day)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", pattern, err)
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// group buckets sorted names by hour. Names that do not parse are dropped.
func group(names []string, loc *time.Location, href string) ([]Bucket, int) {
	var (
		buckets []Bucket
		total   int
	)
	for _, name := range names {
		t, ok := artifact.Parse(name, loc)
		if !ok {
			continue
		}
		h := t.Hour()
		if len(buckets) == 0 || buckets[len(buckets)-1].Hour != h {
			buckets = append(buckets, newBucket(h))
		}
		last := &buckets[len(buckets)-1]
		last.Items = append(last.Items, Item{
			Name: name,
			Time: t.Format("15:04:05"),
			Href: href + name,
		})
		total++
	}
	return buckets, total
}

func newBucket(h int) Bucket {
	return Bucket{
		Hour:   h,
		Label:  fmt.Sprintf("%02d:00–%02d:59", h, h),
		Anchor: fmt.Sprintf("hour-%02d", h),
	}
}

// hrefBase is the link prefix from the report directory to the screenshots.
func hrefBase(reportDir, screenshotDir string) string {
	rel, err := filepath.Rel(reportDir, screenshotDir)
	if err != nil {
		return "file://" + filepath.ToSlash(screenshotDir) + "/"
	}
	return filepath.ToSlash(rel) + "/"
}
