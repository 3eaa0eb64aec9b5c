package schedule

import "sync"

// Serial runs queued functions one at a time in queue order.
//
// Drain runs on the goroutine that finds the queue idle; a Drain that finds
// another goroutine already running returns at once and leaves its work to
// that goroutine. Functions may Enqueue and Drain again; such work runs after
// the current function returns. The zero value is ready to use.
type Serial struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

// Enqueue appends fns without running them.
func (s *Serial) Enqueue(fns ...func()) {
	if len(fns) == 0 {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, fns...)
	s.mu.Unlock()
}

// Run enqueues fns and drains the queue.
func (s *Serial) Run(fns ...func()) {
	s.Enqueue(fns...)
	s.Drain()
}

// Drain runs queued functions until the queue is empty, unless another
// goroutine is already draining.
func (s *Serial) Drain() {
	s.mu.Lock()
	if s.running || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	done := false
	defer func() {
		if !done {
			// fn panicked; let the next Drain pick up the rest.
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}
	}()
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.mu.Unlock()
			done = true
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
	}
}

// Len returns the number of functions waiting to run.
func (s *Serial) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
