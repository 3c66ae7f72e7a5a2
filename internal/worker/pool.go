package worker

import (
	"fmt"

	"github.com/Iron-Ham/lbsim/internal/errors"
)

// Pool owns the active workers. Workers are stored in an arena keyed by a
// stable identity; removing a worker invalidates its ID rather than leaving a
// dangling reference. Identities start at 1 and are never reused.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	workers map[int]*Worker
	order   []int // insertion order, used to pick removal candidates
	nextID  int
}

// NewPool creates an empty pool whose first worker will receive ID 1.
func NewPool() *Pool {
	return &Pool{
		workers: make(map[int]*Worker),
		nextID:  1,
	}
}

// Add creates a new idle worker with a fresh identity and appends it.
func (p *Pool) Add() *Worker {
	w := New(p.nextID)
	p.nextID++
	p.workers[w.id] = w
	p.order = append(p.order, w.id)
	return w
}

// Get returns the worker with the given ID.
func (p *Pool) Get(id int) (*Worker, bool) {
	w, ok := p.workers[id]
	return w, ok
}

// Len returns the number of workers in the pool.
func (p *Pool) Len() int {
	return len(p.order)
}

// Workers returns the workers in insertion order. The slice is a copy; the
// workers are not.
func (p *Pool) Workers() []*Worker {
	out := make([]*Worker, len(p.order))
	for i, id := range p.order {
		out[i] = p.workers[id]
	}
	return out
}

// FirstIdle returns the first idle worker in insertion order.
func (p *Pool) FirstIdle() (*Worker, bool) {
	for _, id := range p.order {
		if w := p.workers[id]; !w.IsBusy() {
			return w, true
		}
	}
	return nil, false
}

// Remove deletes an idle worker. The pool never drops below one worker.
func (p *Pool) Remove(id int) error {
	w, ok := p.workers[id]
	if !ok {
		return fmt.Errorf("remove worker %d: %w", id, errors.ErrWorkerNotFound)
	}
	if p.Len() <= 1 {
		return fmt.Errorf("remove worker %d: %w", id, errors.ErrPoolExhausted)
	}
	if w.IsBusy() {
		return fmt.Errorf("remove worker %d: %w", id, errors.ErrWorkerBusy)
	}
	delete(p.workers, id)
	for i, oid := range p.order {
		if oid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveFirstIdle removes the first idle worker in insertion order and
// returns its ID. It reports false when the pool has a single worker or
// every worker is busy.
func (p *Pool) RemoveFirstIdle() (int, bool) {
	if p.Len() <= 1 {
		return 0, false
	}
	w, ok := p.FirstIdle()
	if !ok {
		return 0, false
	}
	if err := p.Remove(w.id); err != nil {
		return 0, false
	}
	return w.id, true
}

// Counts returns the number of busy and idle workers.
func (p *Pool) Counts() (busy, idle int) {
	for _, w := range p.workers {
		if w.IsBusy() {
			busy++
		} else {
			idle++
		}
	}
	return busy, idle
}
