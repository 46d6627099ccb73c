// Package clock abstracts wall time and timers so schedulers can be driven
// by a fake clock in tests.
package clock

import (
	"sync"
	"time"
)

// Handle is an armed timer. Disarm is safe to call more than once.
type Handle interface {
	Disarm()
}

// Clock provides the current time and arms callbacks.
type Clock interface {
	Now() time.Time
	// Arm runs fn once after d.
	Arm(d time.Duration, fn func()) Handle
	// ArmRepeating runs fn every d until the handle is disarmed.
	ArmRepeating(d time.Duration, fn func()) Handle
}

// Real is the system clock.
type Real struct{}

// New returns the system clock.
func New() Clock {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) Arm(d time.Duration, fn func()) Handle {
	return &timerHandle{t: time.AfterFunc(d, fn)}
}

func (Real) ArmRepeating(d time.Duration, fn func()) Handle {
	h := &tickerHandle{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go h.loop(fn)
	return h
}

type timerHandle struct {
	t *time.Timer
}

func (h *timerHandle) Disarm() {
	h.t.Stop()
}

type tickerHandle struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (h *tickerHandle) loop(fn func()) {
	for {
		select {
		case <-h.ticker.C:
			// Disarm may race with a tick that was already delivered.
			select {
			case <-h.done:
				return
			default:
			}
			fn()
		case <-h.done:
			return
		}
	}
}

func (h *tickerHandle) Disarm() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}
