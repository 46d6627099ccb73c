package daemon

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/manav03panchal/worklog/internal/errors"
)

// Metrics tracks daemon operational counters.
type Metrics struct {
	// Counters
	capturesTotal   atomic.Int64
	capturesFailed  atomic.Int64
	archiveFailures atomic.Int64
	reportsBuilt    atomic.Int64
	reportsFailed   atomic.Int64

	mu            sync.RWMutex
	lastCaptureAt time.Time
	lastCaptureMs int64
	lastReportAt  time.Time
	lastError     string
	lastErrorAt   time.Time
	errorsByKind  map[errors.Kind]int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{errorsByKind: make(map[errors.Kind]int64)}
}

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	CapturesTotal   int64                 `json:"captures_total"`
	CapturesFailed  int64                 `json:"captures_failed"`
	ArchiveFailures int64                 `json:"archive_failures"`
	ReportsBuilt    int64                 `json:"reports_built"`
	ReportsFailed   int64                 `json:"reports_failed"`
	LastCaptureAt   *time.Time            `json:"last_capture_at,omitempty"`
	LastCaptureMs   int64                 `json:"last_capture_ms,omitempty"`
	LastReportAt    *time.Time            `json:"last_report_at,omitempty"`
	LastError       string                `json:"last_error,omitempty"`
	LastErrorAt     *time.Time            `json:"last_error_at,omitempty"`
	ErrorsByKind    map[errors.Kind]int64 `json:"errors_by_kind,omitempty"`
}

// Snapshot returns a copy of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		CapturesTotal:   m.capturesTotal.Load(),
		CapturesFailed:  m.capturesFailed.Load(),
		ArchiveFailures: m.archiveFailures.Load(),
		ReportsBuilt:    m.reportsBuilt.Load(),
		ReportsFailed:   m.reportsFailed.Load(),
		LastCaptureMs:   m.lastCaptureMs,
		LastError:       m.lastError,
	}
	if !m.lastCaptureAt.IsZero() {
		t := m.lastCaptureAt
		snap.LastCaptureAt = &t
	}
	if !m.lastReportAt.IsZero() {
		t := m.lastReportAt
		snap.LastReportAt = &t
	}
	if !m.lastErrorAt.IsZero() {
		t := m.lastErrorAt
		snap.LastErrorAt = &t
	}
	if len(m.errorsByKind) > 0 {
		snap.ErrorsByKind = make(map[errors.Kind]int64, len(m.errorsByKind))
		for k, v := range m.errorsByKind {
			snap.ErrorsByKind[k] = v
		}
	}
	return snap
}

// RecordCapture records the outcome of one capture cycle.
func (m *Metrics) RecordCapture(at time.Time, took time.Duration, err error) {
	m.capturesTotal.Add(1)
	switch {
	case err == nil:
	case errors.IsArchiveError(err):
		m.archiveFailures.Add(1)
		m.recordError(err)
	default:
		m.capturesFailed.Add(1)
		m.recordError(err)
	}

	if err == nil || errors.IsArchiveError(err) {
		m.mu.Lock()
		m.lastCaptureAt = at
		m.lastCaptureMs = took.Milliseconds()
		m.mu.Unlock()
	}
}

// RecordReport records the outcome of one report build.
func (m *Metrics) RecordReport(at time.Time, err error) {
	if err != nil {
		m.reportsFailed.Add(1)
		m.recordError(err)
		return
	}
	m.reportsBuilt.Add(1)
	m.mu.Lock()
	m.lastReportAt = at
	m.mu.Unlock()
}

func (m *Metrics) recordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = err.Error()
	m.lastErrorAt = time.Now()
	m.errorsByKind[errors.Classify(err)]++
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	m.capturesTotal.Store(0)
	m.capturesFailed.Store(0)
	m.archiveFailures.Store(0)
	m.reportsBuilt.Store(0)
	m.reportsFailed.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCaptureAt = time.Time{}
	m.lastCaptureMs = 0
	m.lastReportAt = time.Time{}
	m.lastError = ""
	m.lastErrorAt = time.Time{}
	m.errorsByKind = make(map[errors.Kind]int64)
}
