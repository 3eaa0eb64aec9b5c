// Package schedule provides the deferred-execution primitives used by the
// editor: a Scheduler abstraction over delayed tasks, a coalescing Debouncer
// and a single-slot deferred notification queue.
//
// Nothing here is a general event loop. A task is a single-shot delayed
// call; "next tick" is a task with zero delay.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to a scheduled task.
type Timer interface {
	// Stop cancels the task. It returns false if the task already ran or
	// was already stopped.
	Stop() bool
}

// Scheduler runs f once after at least d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realtime struct{}

func (realtime) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// System is the wall-clock scheduler backed by time.AfterFunc.
var System Scheduler = realtime{}

// Defer queues f for the next tick of s.
func Defer(s Scheduler, f func()) Timer {
	return s.AfterFunc(0, f)
}

// Manual is a deterministic Scheduler driven by Advance. Tasks run on the
// goroutine that calls Advance, in due-time order; tasks with the same due
// time run in the order they were scheduled.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	m       *Manual
	at      time.Duration
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManual returns a manual scheduler whose clock starts at zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTask{m: m, at: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of tasks that have neither run nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every task that becomes due,
// including tasks scheduled by tasks run during this call.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.compact()
			m.mu.Unlock()
			return
		}
		next.fired = true
		m.now = next.at
		m.mu.Unlock()

		next.f()
	}
}

// Flush runs every task that is due now without moving the clock.
func (m *Manual) Flush() {
	m.Advance(0)
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	var due []*manualTask
	for _, t := range m.tasks {
		if !t.stopped && !t.fired && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

func (m *Manual) compact() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.tasks); i++ {
		m.tasks[i] = nil
	}
	m.tasks = live
}
