// Package scheduler drives timed work: the recurring capture loop, the daily
// report and the daemon's maintenance jobs.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/manav03panchal/worklog/internal/artifact"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
)

// State is the recording state.
type State int

const (
	Stopped State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "stopped"
}

// Notification titles used at the scheduler boundary.
const (
	TitleRecordingStopped = "Recording stopped"
	TitleArchiveFailed    = "Screenshot not committed"
	TitleReportFailed     = "Daily report failed"
)

// Capturer runs one capture cycle.
type Capturer interface {
	Capture(ctx context.Context) (*artifact.Artifact, error)
}

// Gate reports whether screen capture is allowed.
type Gate interface {
	IsGranted() bool
	RequestAccess() error
}

// Notifier shows a user-visible message without blocking.
type Notifier interface {
	Notify(title, body string)
}

// StateFunc observes recording state transitions. err is the failure that
// caused a transition to Stopped, if any.
type StateFunc func(state State, err error)

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	Clock    clock.Clock
	Interval time.Duration
	Capturer Capturer
	Gate     Gate
	Notifier Notifier
}

// Recorder toggles between Stopped and Recording. While recording it runs a
// capture every interval. At most one cycle runs at a time: a tick that
// arrives while a cycle is still running is skipped, while the immediate
// capture of Start waits for the running cycle to finish. Any failure of a
// scheduled cycle, including a failed commit, stops recording.
type Recorder struct {
	clock    clock.Clock
	capturer Capturer
	gate     Gate
	notifier Notifier

	// op serializes transitions so a slow first capture cannot race a Stop.
	op sync.Mutex

	mu       sync.Mutex
	state    State
	interval time.Duration
	handle   clock.Handle
	session  uint64
	lastErr  error
	lastShot time.Time
	watchers []StateFunc

	// cycleMu is held for the duration of one capture cycle.
	cycleMu sync.Mutex
}

// NewRecorder creates a stopped recorder.
func NewRecorder(opts RecorderOptions) *Recorder {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Interval <= 0 {
		opts.Interval = config.Defaults().IntervalDuration()
	}
	return &Recorder{
		clock:    opts.Clock,
		capturer: opts.Capturer,
		gate:     opts.Gate,
		notifier: opts.Notifier,
		interval: opts.Interval,
	}
}

// OnStateChange registers fn to be called after every transition.
func (r *Recorder) OnStateChange(fn StateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers = append(r.watchers, fn)
}

// State returns the current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Interval returns the capture period.
func (r *Recorder) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// LastError returns the failure that last stopped recording.
func (r *Recorder) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// LastCapture returns when the last successful capture was taken.
func (r *Recorder) LastCapture() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastShot
}

// Toggle flips the state and returns the new one.
func (r *Recorder) Toggle(ctx context.Context) (State, error) {
	r.op.Lock()
	defer r.op.Unlock()

	if r.State() == Recording {
		r.stop()
		return Stopped, nil
	}
	if err := r.start(ctx); err != nil {
		return Stopped, err
	}
	return Recording, nil
}

// Start begins recording. It waits for a capture still running from an
// earlier session, then takes one capture immediately and returns its error
// without arming the timer if that capture or its commit fails. Starting
// while already recording is a no-op.
func (r *Recorder) Start(ctx context.Context) error {
	r.op.Lock()
	defer r.op.Unlock()

	if r.State() == Recording {
		return nil
	}
	return r.start(ctx)
}

// Stop disarms the timer. A cycle already running is allowed to finish.
func (r *Recorder) Stop() {
	r.op.Lock()
	defer r.op.Unlock()
	r.stop()
}

// Apply re-arms the timer when the interval changed while recording. The
// new period starts from now.
func (r *Recorder) Apply(cfg config.Configuration) {
	r.op.Lock()
	defer r.op.Unlock()

	interval := cfg.IntervalDuration()
	if interval <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if interval == r.interval {
		return
	}
	r.interval = interval
	if r.state != Recording {
		return
	}
	r.handle.Disarm()
	r.armLocked()
	logging.Info("capture interval changed", logging.KeyInterval, interval.String())
}

func (r *Recorder) start(ctx context.Context) error {
	if r.gate != nil && !r.gate.IsGranted() {
		if err := r.gate.RequestAccess(); err != nil {
			logging.Warn("failed to request screen recording access", logging.Err(err))
		}
		err := errors.NewCaptureError("permission", "", errors.ErrPermissionDenied)
		r.setLastErr(err)
		return err
	}

	r.cycleMu.Lock()
	_, err := r.capture(ctx)
	r.cycleMu.Unlock()
	if err != nil {
		r.setLastErr(err)
		return err
	}

	r.mu.Lock()
	r.session++
	r.state = Recording
	r.lastErr = nil
	r.armLocked()
	watchers := r.watchers
	r.mu.Unlock()

	logging.Info("recording started", logging.KeyInterval, r.Interval().String())
	emit(watchers, Recording, nil)
	return nil
}

func (r *Recorder) stop() {
	r.mu.Lock()
	if r.state == Stopped {
		r.mu.Unlock()
		return
	}
	r.disarmLocked()
	watchers := r.watchers
	r.mu.Unlock()

	logging.Info("recording stopped")
	emit(watchers, Stopped, nil)
}

// armLocked schedules ticks for the current session. Callers hold mu.
func (r *Recorder) armLocked() {
	session := r.session
	r.handle = r.clock.ArmRepeating(r.interval, func() { r.tick(session) })
}

func (r *Recorder) disarmLocked() {
	if r.handle != nil {
		r.handle.Disarm()
		r.handle = nil
	}
	r.state = Stopped
	r.session++
}

func (r *Recorder) tick(session uint64) {
	r.mu.Lock()
	live := r.state == Recording && r.session == session
	r.mu.Unlock()
	if !live {
		return
	}

	ctx := logging.NewCycleContext(context.Background())
	if !r.cycleMu.TryLock() {
		logging.WarnContext(ctx, "previous capture still running, skipping tick")
		return
	}
	_, err := r.capture(ctx)
	r.cycleMu.Unlock()
	if err == nil {
		return
	}

	title := TitleRecordingStopped
	if errors.IsArchiveError(err) {
		title = TitleArchiveFailed
	}
	if !r.halt(session, title, err) {
		logging.WarnContext(ctx, "capture failed after recording stopped", logging.Err(err))
		return
	}
	logging.ErrorContext(ctx, "capture failed, stopping recording", logging.Err(err))
}

// capture runs one cycle. Callers hold cycleMu.
func (r *Recorder) capture(ctx context.Context) (*artifact.Artifact, error) {
	art, err := r.capturer.Capture(ctx)
	if art != nil {
		r.mu.Lock()
		r.lastShot = art.TakenAt
		r.mu.Unlock()
	}
	return art, err
}

// halt stops recording after a failed tick, unless the session that
// produced the failure has already ended. It reports whether it stopped.
func (r *Recorder) halt(session uint64, title string, err error) bool {
	r.mu.Lock()
	if r.state != Recording || r.session != session {
		r.mu.Unlock()
		return false
	}
	r.disarmLocked()
	r.lastErr = err
	watchers := r.watchers
	r.mu.Unlock()

	r.notify(title, errors.FormatError(err))
	emit(watchers, Stopped, err)
	return true
}

func (r *Recorder) setLastErr(err error) {
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
}

func (r *Recorder) notify(title, body string) {
	if r.notifier != nil {
		r.notifier.Notify(title, body)
	}
}

func emit(watchers []StateFunc, s State, err error) {
	for _, fn := range watchers {
		fn(s, err)
	}
}
