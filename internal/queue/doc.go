// Package queue provides the FIFO buffer of requests waiting for a worker.
//
// The core type is [RequestQueue]. It preserves strict arrival order, has no
// capacity bound, and reports underflow through [errors.ErrEmptyQueue]
// rather than returning a zero request.
//
// Usage:
//
//	q := queue.New()
//	q.Push(req)
//
//	if !q.IsEmpty() {
//	    next, err := q.Pop()
//	    ...
//	}
//
// All methods are safe for concurrent use. Pop is atomic with respect to Len,
// so a depth read used for a scaling decision never observes a half-finished
// removal.
package queue
