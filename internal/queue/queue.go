package queue

import (
	"sync"

	"github.com/Iron-Ham/lbsim/internal/errors"
	"github.com/Iron-Ham/lbsim/internal/request"
)

// RequestQueue is an unbounded FIFO of pending requests.
// All methods are safe for concurrent use via an internal mutex.
type RequestQueue struct {
	mu    sync.Mutex
	items []request.Request
	head  int // index of the oldest request in items
}

// New creates an empty RequestQueue.
func New() *RequestQueue {
	return &RequestQueue{}
}

// Push appends a request at the tail.
func (q *RequestQueue) Push(r request.Request) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, r)
}

// Pop removes and returns the request at the head.
// Returns ErrEmptyQueue if the queue holds nothing.
func (q *RequestQueue) Pop() (request.Request, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.lenLocked() == 0 {
		return request.Request{}, errors.ErrEmptyQueue
	}
	r := q.items[q.head]
	q.items[q.head] = request.Request{}
	q.head++
	q.compactLocked()
	return r, nil
}

// Peek returns the request at the head without removing it.
// Returns ErrEmptyQueue if the queue holds nothing.
func (q *RequestQueue) Peek() (request.Request, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.lenLocked() == 0 {
		return request.Request{}, errors.ErrEmptyQueue
	}
	return q.items[q.head], nil
}

// Len returns the number of pending requests.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.lenLocked()
}

// IsEmpty reports whether Len() == 0.
func (q *RequestQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Snapshot returns a copy of the pending requests in arrival order.
func (q *RequestQueue) Snapshot() []request.Request {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]request.Request, q.lenLocked())
	copy(out, q.items[q.head:])
	return out
}

// lenLocked returns the pending count. The caller must hold the mutex.
func (q *RequestQueue) lenLocked() int {
	return len(q.items) - q.head
}

// compactLocked reclaims the consumed prefix once it dominates the slice so
// a long-running queue does not grow without bound. The caller must hold the
// mutex.
func (q *RequestQueue) compactLocked() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head >= 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}
