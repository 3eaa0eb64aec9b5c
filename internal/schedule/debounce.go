package schedule

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into a single trailing call.
//
// The first Trigger of a burst arms a timer for wait; further triggers while
// the timer is pending are absorbed. When the timer fires fn runs once, so a
// continuous burst produces at most one call per wait window.
type Debouncer struct {
	mu    sync.Mutex
	sched Scheduler
	wait  time.Duration
	fn    func()
	timer Timer
	gen   uint64
}

// NewDebouncer returns a debouncer that calls fn at most once per wait.
func NewDebouncer(s Scheduler, wait time.Duration, fn func()) *Debouncer {
	if s == nil {
		s = System
	}
	return &Debouncer{sched: s, wait: wait, fn: fn}
}

// Trigger arms the debouncer if it is idle.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		return
	}
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Pending reports whether a call is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Flush runs the pending call now instead of waiting for the timer.
// It does nothing when no call is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.cancelLocked()
	fn := d.fn
	d.mu.Unlock()
	fn()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.gen++
	fn := d.fn
	d.mu.Unlock()
	fn()
}
