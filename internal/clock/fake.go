package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced clock. Callbacks run synchronously on the
// goroutine calling Advance, in due order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*fakeTimer
}

type fakeTimer struct {
	id     int
	due    time.Time
	period time.Duration
	fn     func()
}

// NewFake returns a fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start, timers: make(map[int]*fakeTimer)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Arm(d time.Duration, fn func()) Handle {
	return f.add(d, 0, fn)
}

func (f *Fake) ArmRepeating(d time.Duration, fn func()) Handle {
	if d <= 0 {
		panic("clock: non-positive repeating interval")
	}
	return f.add(d, d, fn)
}

func (f *Fake) add(d, period time.Duration, fn func()) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := &fakeTimer{id: f.nextID, due: f.now.Add(d), period: period, fn: fn}
	f.timers[t.id] = t
	return &fakeHandle{f: f, id: t.id}
}

// Pending returns the number of armed timers.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// NextDue returns the earliest armed instant, or false if nothing is armed.
func (f *Fake) NextDue() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.earliest()
	if t == nil {
		return time.Time{}, false
	}
	return t.due, true
}

// Set moves the clock to t without firing anything. Timers that are overdue
// afterwards fire on the next Advance without moving the clock back.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d, firing every callback that falls due.
// Callbacks may arm or disarm timers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		t := f.earliest()
		if t == nil || t.due.After(target) {
			f.now = target
			f.mu.Unlock()
			return
		}
		if t.due.After(f.now) {
			f.now = t.due
		}
		if t.period > 0 {
			t.due = t.due.Add(t.period)
		} else {
			delete(f.timers, t.id)
		}
		fn := t.fn
		f.mu.Unlock()

		fn()
	}
}

func (f *Fake) earliest() *fakeTimer {
	if len(f.timers) == 0 {
		return nil
	}
	all := make([]*fakeTimer, 0, len(f.timers))
	for _, t := range f.timers {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].due.Equal(all[j].due) {
			return all[i].id < all[j].id
		}
		return all[i].due.Before(all[j].due)
	})
	return all[0]
}

type fakeHandle struct {
	f  *Fake
	id int
}

func (h *fakeHandle) Disarm() {
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	delete(h.f.timers, h.id)
}
