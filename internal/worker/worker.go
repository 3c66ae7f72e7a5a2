// Package worker models the request-processing units of the simulated pool
// and the identity-keyed pool that owns them.
package worker

import (
	"fmt"

	"github.com/Iron-Ham/lbsim/internal/errors"
	"github.com/Iron-Ham/lbsim/internal/request"
)

// State is a worker's position in its state machine.
type State string

const (
	// StateIdle means the worker owns no unfinished request.
	StateIdle State = "idle"

	// StateBusy means the worker is counting down a request.
	StateBusy State = "busy"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Worker processes one request at a time, one cycle per Tick.
//
// A worker is not safe for concurrent use; the pool's owner serializes access.
type Worker struct {
	id        int
	busy      bool
	current   request.Request
	hasReq    bool
	remaining int
}

// New creates an idle worker with the given identity.
func New(id int) *Worker {
	return &Worker{id: id}
}

// ID returns the worker's identity.
func (w *Worker) ID() int { return w.id }

// State returns StateBusy or StateIdle.
func (w *Worker) State() State {
	if w.busy {
		return StateBusy
	}
	return StateIdle
}

// IsBusy reports whether the worker is counting down a request.
func (w *Worker) IsBusy() bool { return w.busy }

// Remaining returns the cycles left on the current request.
func (w *Worker) Remaining() int { return w.remaining }

// Current returns the owned request. After a completing Tick the finished
// request is still returned until SetIdle or ForceIdle releases it.
func (w *Worker) Current() (request.Request, bool) {
	return w.current, w.hasReq
}

// Assign moves an idle worker to busy with the request's duration as the
// countdown. A duration below one completes on the next Tick.
func (w *Worker) Assign(r request.Request) error {
	if w.busy {
		return fmt.Errorf("assign to worker %d: %w", w.id, errors.ErrWorkerBusy)
	}
	w.busy = true
	w.current = r
	w.hasReq = true
	w.remaining = max(r.Duration, 0)
	return nil
}

// Tick advances the current request by one cycle and reports whether it just
// completed. On completion the worker becomes idle but keeps the finished
// request for inspection. Ticking an idle worker does nothing.
func (w *Worker) Tick() bool {
	if !w.busy {
		return false
	}
	if w.remaining > 0 {
		w.remaining--
	}
	if w.remaining == 0 {
		w.busy = false
		return true
	}
	return false
}

// SetIdle releases the finished request after a completing Tick.
func (w *Worker) SetIdle() {
	w.busy = false
	w.current = request.Request{}
	w.hasReq = false
	w.remaining = 0
}

// ForceIdle drops any in-flight request unconditionally.
// Calling it repeatedly leaves the worker in the same state as calling it once.
func (w *Worker) ForceIdle() {
	w.SetIdle()
}

// Snapshot is a read-only view of a worker.
type Snapshot struct {
	ID        int
	State     State
	Remaining int
	Request   *request.Request
}

// Snapshot returns a copy of the worker's observable state.
func (w *Worker) Snapshot() Snapshot {
	s := Snapshot{ID: w.id, State: w.State(), Remaining: w.remaining}
	if w.hasReq {
		r := w.current
		s.Request = &r
	}
	return s
}
