package worker

import (
	"testing"

	"github.com/Iron-Ham/lbsim/internal/errors"
	"github.com/Iron-Ham/lbsim/internal/request"
)

func newReq(duration int) request.Request {
	return request.New("10.0.0.1", "10.0.0.2", duration, request.JobProcessing)
}

func TestNew_IsIdle(t *testing.T) {
	w := New(7)
	if w.ID() != 7 {
		t.Errorf("ID() = %d, want 7", w.ID())
	}
	if w.State() != StateIdle {
		t.Errorf("State() = %s, want idle", w.State())
	}
	if _, ok := w.Current(); ok {
		t.Error("new worker should own no request")
	}
}

func TestWorker_TickIdleIsNoop(t *testing.T) {
	w := New(1)
	if w.Tick() {
		t.Error("Tick() on idle worker reported completion")
	}
	if w.State() != StateIdle || w.Remaining() != 0 {
		t.Errorf("idle Tick changed state: %+v", w.Snapshot())
	}
}

func TestWorker_CompletesOnExactTick(t *testing.T) {
	w := New(1)
	r := newReq(5)
	if err := w.Assign(r); err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	if w.State() != StateBusy || w.Remaining() != 5 {
		t.Fatalf("after Assign: state=%s remaining=%d", w.State(), w.Remaining())
	}

	for i := 1; i <= 4; i++ {
		if w.Tick() {
			t.Fatalf("Tick() #%d reported completion early", i)
		}
		if w.Remaining() != 5-i {
			t.Fatalf("after Tick() #%d remaining = %d, want %d", i, w.Remaining(), 5-i)
		}
		if !w.IsBusy() {
			t.Fatalf("worker went idle after Tick() #%d", i)
		}
	}

	if !w.Tick() {
		t.Fatal("Tick() #5 did not report completion")
	}
	if w.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", w.Remaining())
	}
	if w.State() != StateIdle {
		t.Errorf("State() = %s, want idle immediately after completion", w.State())
	}

	got, ok := w.Current()
	if !ok || got != r {
		t.Errorf("Current() after completion = %+v, %v; want finished request", got, ok)
	}

	if w.Tick() {
		t.Error("Tick() #6 reported a second completion")
	}

	w.SetIdle()
	if _, ok := w.Current(); ok {
		t.Error("Current() still set after SetIdle()")
	}
}

func TestWorker_AssignBusy(t *testing.T) {
	w := New(3)
	if err := w.Assign(newReq(2)); err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	err := w.Assign(newReq(2))
	if !errors.Is(err, errors.ErrWorkerBusy) {
		t.Errorf("second Assign() error = %v, want ErrWorkerBusy", err)
	}
}

func TestWorker_ZeroDurationCompletesOnFirstTick(t *testing.T) {
	w := New(1)
	if err := w.Assign(newReq(0)); err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	if !w.IsBusy() {
		t.Fatal("zero-duration assignment should still mark the worker busy")
	}
	if !w.Tick() {
		t.Fatal("first Tick() should complete a zero-duration request")
	}
	if w.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", w.Remaining())
	}
}

func TestWorker_ForceIdleIdempotent(t *testing.T) {
	w := New(4)
	if err := w.Assign(newReq(9)); err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	w.Tick()

	w.ForceIdle()
	once := w.Snapshot()
	w.ForceIdle()
	twice := w.Snapshot()

	if once.State != StateIdle || once.Remaining != 0 || once.Request != nil {
		t.Errorf("after ForceIdle: %+v", once)
	}
	if once.ID != twice.ID || once.State != twice.State ||
		once.Remaining != twice.Remaining || (once.Request == nil) != (twice.Request == nil) {
		t.Errorf("ForceIdle twice = %+v, once = %+v", twice, once)
	}
}
