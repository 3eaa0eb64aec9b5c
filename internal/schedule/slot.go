package schedule

import "sync"

// Slot is a single-slot deferred notification queue.
//
// Post stores a value and queues delivery for the next tick. Posting again
// before delivery replaces the stored value, so at most one delivery is
// pending and it always carries the latest value. The callback runs without
// any Slot lock held and may post again.
type Slot[T any] struct {
	mu      sync.Mutex
	sched   Scheduler
	fn      func(T)
	value   T
	pending bool
	timer   Timer
}

// NewSlot returns a slot delivering to fn through s.
func NewSlot[T any](s Scheduler, fn func(T)) *Slot[T] {
	if s == nil {
		s = System
	}
	return &Slot[T]{sched: s, fn: fn}
}

// Post queues v for delivery.
func (s *Slot[T]) Post(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	if s.pending {
		return
	}
	s.pending = true
	s.timer = Defer(s.sched, s.deliver)
}

// Cancel drops a pending delivery.
func (s *Slot[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

func (s *Slot[T]) deliver() {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	v := s.value
	s.pending = false
	s.timer = nil
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}
