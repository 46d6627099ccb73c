// Package notify delivers user-visible events: a desktop notification after
// each capture and alerts when a scheduled cycle fails.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/manav03panchal/worklog/internal/logging"
)

// Message is one user-visible event.
type Message struct {
	Title string
	Body  string
	At    time.Time
}

// Sink delivers a message somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, m Message) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) {}

// Dispatcher fans each notification out to every sink on its own goroutine.
// Notify never blocks the caller.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	now     func() time.Time

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Each send is bounded by timeout.
func NewDispatcher(timeout time.Duration, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, timeout: timeout, now: time.Now}
}

// Notify sends title and body to every sink in the background.
func (d *Dispatcher) Notify(title, body string) {
	m := Message{Title: title, Body: body, At: d.now()}
	for _, s := range d.sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			d.send(s, m)
		}(s)
	}
}

func (d *Dispatcher) send(s Sink, m Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := s.Send(ctx, m); err != nil {
		logging.Warn("notification failed",
			"sink", s.Name(),
			logging.Err(err),
			logging.KeyDuration, time.Since(start).Milliseconds(),
		)
	}
}

// Wait blocks until every in-flight notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogSink writes notifications to the structured log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(_ context.Context, m Message) error {
	logging.Info("notification", "title", m.Title, "body", m.Body)
	return nil
}
