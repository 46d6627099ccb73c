package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/worklog/internal/artifact"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/report"
)

// ReportBuilder builds the report for one day.
type ReportBuilder interface {
	Build(ctx context.Context, day time.Time) (*report.Document, error)
}

// NextFire returns the next instant at tod on or after now: today when now
// has not passed it yet, otherwise tomorrow.
func NextFire(now time.Time, tod config.TimeOfDay) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), tod.Hour, tod.Minute, 0, 0, now.Location())
	if now.Equal(today) {
		return today
	}
	return nextAfter(now, tod)
}

// nextAfter returns the first instant at tod strictly after t.
func nextAfter(t time.Time, tod config.TimeOfDay) time.Time {
	sched, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", tod.Minute, tod.Hour))
	if err != nil {
		// tod is range-checked on parse, so this only guards zero values.
		return t.Add(24 * time.Hour)
	}
	return sched.Next(t)
}

// DailyReport fires once a day at the configured time of day and builds the
// report for that day. A missed instant is not caught up.
type DailyReport struct {
	clock    clock.Clock
	builder  ReportBuilder
	notifier Notifier

	mu      sync.Mutex
	enabled bool
	tod     config.TimeOfDay
	handle  clock.Handle
	next    time.Time
	gen     uint64
}

// NewDailyReport creates a disarmed daily report scheduler.
func NewDailyReport(c clock.Clock, builder ReportBuilder, notifier Notifier) *DailyReport {
	if c == nil {
		c = clock.New()
	}
	return &DailyReport{clock: c, builder: builder, notifier: notifier}
}

// Apply arms, re-arms or cancels the timer to match cfg.
func (d *DailyReport) Apply(cfg config.Configuration) {
	tod, err := cfg.ReportTime()
	if err != nil {
		logging.Warn("invalid daily report time, report disabled", logging.Err(err))
	}
	enabled := cfg.CreateDailyReport && err == nil

	d.mu.Lock()
	defer d.mu.Unlock()

	if enabled == d.enabled && tod == d.tod && (d.handle != nil || !enabled) {
		return
	}
	d.cancelLocked()
	d.enabled = enabled
	d.tod = tod
	if !enabled {
		logging.Info("daily report disabled")
		return
	}
	d.armLocked(NextFire(d.clock.Now(), tod))
}

// Stop cancels the pending report.
func (d *DailyReport) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.enabled = false
}

// Next returns the armed fire instant, or the zero time when disarmed.
func (d *DailyReport) Next() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

func (d *DailyReport) cancelLocked() {
	if d.handle != nil {
		d.handle.Disarm()
		d.handle = nil
	}
	d.next = time.Time{}
	d.gen++
}

func (d *DailyReport) armLocked(target time.Time) {
	gen := d.gen
	d.next = target
	d.handle = d.clock.Arm(target.Sub(d.clock.Now()), func() { d.fire(gen, target) })
	logging.Info("daily report scheduled", logging.KeyNext, target.Format(time.RFC3339))
}

func (d *DailyReport) fire(gen uint64, target time.Time) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.handle = nil
	d.mu.Unlock()

	ctx := logging.NewCycleContext(context.Background())
	if _, err := d.builder.Build(ctx, target); err != nil {
		logging.ErrorContext(ctx, "daily report failed",
			logging.KeyDay, artifact.DayKey(target),
			logging.Err(err),
		)
		if d.notifier != nil {
			d.notifier.Notify(TitleReportFailed, errors.FormatError(err))
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	after := d.clock.Now()
	if after.Before(target) {
		after = target
	}
	d.armLocked(nextAfter(after, d.tod))
}
