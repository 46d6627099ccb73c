package daemon

import (
	"context"
	"time"

	"github.com/manav03panchal/worklog/internal/artifact"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/report"
	"github.com/manav03panchal/worklog/internal/scheduler"
)

// EngineOptions configures an Engine.
type EngineOptions struct {
	Clock    clock.Clock
	Store    *config.Store
	Capturer scheduler.Capturer
	Gate     scheduler.Gate
	Builder  scheduler.ReportBuilder
	Notifier scheduler.Notifier
	Metrics  *Metrics
	// OnChange is called after recording starts or stops and after a report
	// is built. Optional.
	OnChange func()
}

// Engine connects the configuration store to the recorder and the daily
// report scheduler. Every accepted configuration change is pushed to both.
type Engine struct {
	clock    clock.Clock
	store    *config.Store
	recorder *scheduler.Recorder
	daily    *scheduler.DailyReport
	builder  scheduler.ReportBuilder
	metrics  *Metrics
	onChange func()
}

// NewEngine creates an engine. Nothing is armed until Start.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	e := &Engine{
		clock:    opts.Clock,
		store:    opts.Store,
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
	}
	e.builder = &meteredBuilder{next: opts.Builder, metrics: e.metrics, clock: e.clock}
	e.recorder = scheduler.NewRecorder(scheduler.RecorderOptions{
		Clock:    e.clock,
		Interval: opts.Store.Current().IntervalDuration(),
		Capturer: &meteredCapturer{next: opts.Capturer, metrics: e.metrics, clock: e.clock},
		Gate:     opts.Gate,
		Notifier: opts.Notifier,
	})
	e.daily = scheduler.NewDailyReport(e.clock, e.builder, opts.Notifier)

	e.recorder.OnStateChange(func(state scheduler.State, err error) {
		if err != nil {
			logging.Warn("recording stopped after failure", logging.Err(err))
		}
		e.changed()
	})
	opts.Store.Subscribe(func(_, cfg config.Configuration) {
		e.recorder.Apply(cfg)
		e.daily.Apply(cfg)
	})
	return e
}

// Start arms the daily report and, when autoStart is set, starts recording.
// A failed first capture is returned; the engine keeps running either way.
func (e *Engine) Start(ctx context.Context) error {
	cfg := e.store.Current()
	e.daily.Apply(cfg)
	if !cfg.AutoStart {
		return nil
	}
	return e.recorder.Start(ctx)
}

// Toggle flips recording.
func (e *Engine) Toggle(ctx context.Context) (scheduler.State, error) {
	return e.recorder.Toggle(ctx)
}

// StartRecording starts recording if it is stopped.
func (e *Engine) StartRecording(ctx context.Context) error {
	return e.recorder.Start(ctx)
}

// StopRecording stops recording.
func (e *Engine) StopRecording() {
	e.recorder.Stop()
}

// BuildReport builds the report for day immediately.
func (e *Engine) BuildReport(ctx context.Context, day time.Time) (*report.Document, error) {
	doc, err := e.builder.Build(ctx, day)
	e.changed()
	return doc, err
}

// Recording reports whether the recorder is running.
func (e *Engine) Recording() bool {
	return e.recorder.State() == scheduler.Recording
}

// Snapshot returns the engine part of the daemon state.
func (e *Engine) Snapshot() State {
	cfg := e.store.Current()
	s := State{
		UpdatedAt:   e.clock.Now(),
		Recording:   e.Recording(),
		IntervalMs:  e.recorder.Interval().Milliseconds(),
		LastCapture: e.recorder.LastCapture(),
		NextReport:  e.daily.Next(),
		Root:        cfg.Root(),
		Metrics:     e.metrics.Snapshot(),
	}
	if err := e.recorder.LastError(); err != nil {
		s.LastError = err.Error()
	}
	return s
}

// Shutdown stops recording and cancels the daily report. An in-flight
// cycle is allowed to finish.
func (e *Engine) Shutdown() {
	e.recorder.Stop()
	e.daily.Stop()
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

type meteredCapturer struct {
	next    scheduler.Capturer
	metrics *Metrics
	clock   clock.Clock
}

func (c *meteredCapturer) Capture(ctx context.Context) (*artifact.Artifact, error) {
	started := c.clock.Now()
	art, err := c.next.Capture(ctx)
	c.metrics.RecordCapture(started, c.clock.Now().Sub(started), err)
	return art, err
}

type meteredBuilder struct {
	next    scheduler.ReportBuilder
	metrics *Metrics
	clock   clock.Clock
}

func (b *meteredBuilder) Build(ctx context.Context, day time.Time) (*report.Document, error) {
	doc, err := b.next.Build(ctx, day)
	if doc != nil || err != nil {
		b.metrics.RecordReport(b.clock.Now(), err)
	}
	return doc, err
}
