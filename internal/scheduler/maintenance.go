package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/worklog/internal/logging"
)

// Maintenance runs the daemon's housekeeping jobs on cron schedules, such as
// rotating the log file and checking free disk space.
type Maintenance struct {
	cron *cron.Cron

	mu        sync.Mutex
	lastCheck time.Time
	started   bool
}

// NewMaintenance creates a maintenance scheduler. Specs use the six-field
// format with seconds.
func NewMaintenance() *Maintenance {
	return &Maintenance{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{}))),
	}
}

// AddJob adds a named job.
func (m *Maintenance) AddJob(name, spec string, job func()) (cron.EntryID, error) {
	id, err := m.cron.AddFunc(spec, func() {
		m.mu.Lock()
		elapsed := time.Since(m.lastCheck)
		m.lastCheck = time.Now()
		m.mu.Unlock()

		logging.DebugLog("running maintenance job", "job", name, "since_last", elapsed.Round(time.Second).String())
		job()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add %s job: %w", name, err)
	}
	return id, nil
}

// RemoveJob removes a job.
func (m *Maintenance) RemoveJob(id cron.EntryID) {
	m.cron.Remove(id)
}

// Start starts running jobs in the background.
func (m *Maintenance) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.lastCheck = time.Now()
	m.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (m *Maintenance) Stop() {
	m.mu.Lock()
	started := m.started
	m.started = false
	m.mu.Unlock()
	if !started {
		return
	}
	<-m.cron.Stop().Done()
}

// Entries returns all scheduled entries.
func (m *Maintenance) Entries() []cron.Entry {
	return m.cron.Entries()
}

// NextRun returns the earliest scheduled run across all jobs.
func (m *Maintenance) NextRun() time.Time {
	entries := m.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// cronLogger routes cron's internal messages to the structured logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logging.DebugLog("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Error("cron: "+msg, append([]any{logging.Err(err)}, keysAndValues...)...)
}
