package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Control is a request sent to a running daemon.
type Control int

const (
	// ControlToggle starts or stops recording.
	ControlToggle Control = iota + 1
	// ControlReport builds today's report now.
	ControlReport
)

func (c Control) String() string {
	switch c {
	case ControlToggle:
		return "toggle"
	case ControlReport:
		return "report"
	default:
		return "unknown"
	}
}

// Event is what the daemon loop reacts to: either a shutdown signal or a
// control request.
type Event struct {
	Signal  os.Signal
	Control Control
}

// Shutdown reports whether the event asks the daemon to exit.
func (e Event) Shutdown() bool {
	return e.Control == 0
}

// SignalHandler turns OS signals into daemon events.
type SignalHandler struct {
	signals chan os.Signal
	done    chan struct{}
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{
		signals: make(chan os.Signal, 4),
		done:    make(chan struct{}),
	}
}

// Setup registers signal handlers.
func (h *SignalHandler) Setup() {
	sigs := []os.Signal{
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGTERM, // Termination request
		syscall.SIGHUP,  // Terminal hangup
	}
	sigs = append(sigs, controlSignals()...)
	signal.Notify(h.signals, sigs...)
}

// Next blocks until a signal arrives. It returns false once ctx is done or
// the handler is stopped.
func (h *SignalHandler) Next(ctx context.Context) (Event, bool) {
	select {
	case sig := <-h.signals:
		ev := Event{Signal: sig}
		if c, ok := controlFor(sig); ok {
			ev.Control = c
		}
		return ev, true
	case <-ctx.Done():
		return Event{}, false
	case <-h.done:
		return Event{}, false
	}
}

// Stop stops waiting for signals.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	close(h.done)
}

// Cleanup unregisters the handler.
func (h *SignalHandler) Cleanup() {
	signal.Stop(h.signals)
}
