package report

import "sync"

// Stats accumulates run counters. It is safe for concurrent use.
type Stats struct {
	mu             sync.Mutex
	workersAdded   int
	workersRemoved int
	started        int
	processed      int
	blocked        int
}

func (s *Stats) incr(field *int) {
	s.mu.Lock()
	*field++
	s.mu.Unlock()
}

func (s *Stats) read(field *int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *field
}

// WorkersAdded returns the number of workers created, including the initial pool.
func (s *Stats) WorkersAdded() int { return s.read(&s.workersAdded) }

// WorkersRemoved returns the number of workers deallocated by scaling.
func (s *Stats) WorkersRemoved() int { return s.read(&s.workersRemoved) }

// RequestsStarted returns the number of requests dispatched to workers.
func (s *Stats) RequestsStarted() int { return s.read(&s.started) }

// RequestsProcessed returns the number of completed requests.
func (s *Stats) RequestsProcessed() int { return s.read(&s.processed) }

// RequestsBlocked returns the number of submissions rejected by the blocklist.
func (s *Stats) RequestsBlocked() int { return s.read(&s.blocked) }
