package sim

import (
	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/scaling"
)

// Header describes a run before it starts.
type Header struct {
	InitialWorkers int
	TotalCycles    int
	MinDuration    int
	MaxDuration    int
	InitialQueue   int
	Blocked        request.Blocklist
}

// Summary describes the engine state when a run ends.
type Summary struct {
	Cycles       int
	FinalWorkers int
	FinalQueue   int
	Cancelled    bool
}

// Reporter receives every observable simulation event. Calls are
// synchronous, made from the goroutine driving the simulator, and ordered by
// cycle.
type Reporter interface {
	// Header is called once at the start of Initialize.
	Header(h Header)
	// Event reports a free-form lifecycle message.
	Event(cycle int, message string)
	// Scaled reports a grow or shrink decision before it is applied. A
	// shrink may still find no idle worker to remove.
	Scaled(cycle int, d scaling.Decision)
	// WorkerAdded reports a worker joining the pool.
	WorkerAdded(cycle, workerID int)
	// WorkerRemoved reports an idle worker leaving the pool.
	WorkerRemoved(cycle, workerID int)
	// RequestStarted reports a request dispatched to a worker.
	RequestStarted(cycle, workerID int, r request.Request)
	// RequestCompleted reports a worker finishing its request.
	RequestCompleted(cycle, workerID int, r request.Request)
	// RequestBlocked reports a submission rejected by the blocklist.
	RequestBlocked(cycle int, r request.Request)
	// Status reports a periodic queue and pool snapshot.
	Status(cycle, queueLen, poolSize int)
	// Summary is called once when Run finishes.
	Summary(s Summary)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Header(Header) {}
func (NopReporter) Event(int, string) {}
func (NopReporter) Scaled(int, scaling.Decision) {}
func (NopReporter) WorkerAdded(int, int) {}
func (NopReporter) WorkerRemoved(int, int) {}
func (NopReporter) RequestStarted(int, int, request.Request) {}
func (NopReporter) RequestCompleted(int, int, request.Request) {}
func (NopReporter) RequestBlocked(int, request.Request) {}
func (NopReporter) Status(int, int, int) {}
func (NopReporter) Summary(Summary) {}

// MultiReporter fans every call out to its members in order.
type MultiReporter []Reporter

func (m MultiReporter) Header(h Header) {
	for _, r := range m {
		r.Header(h)
	}
}

func (m MultiReporter) Event(cycle int, message string) {
	for _, r := range m {
		r.Event(cycle, message)
	}
}

func (m MultiReporter) Scaled(cycle int, d scaling.Decision) {
	for _, r := range m {
		r.Scaled(cycle, d)
	}
}

func (m MultiReporter) WorkerAdded(cycle, workerID int) {
	for _, r := range m {
		r.WorkerAdded(cycle, workerID)
	}
}

func (m MultiReporter) WorkerRemoved(cycle, workerID int) {
	for _, r := range m {
		r.WorkerRemoved(cycle, workerID)
	}
}

func (m MultiReporter) RequestStarted(cycle, workerID int, req request.Request) {
	for _, r := range m {
		r.RequestStarted(cycle, workerID, req)
	}
}

func (m MultiReporter) RequestCompleted(cycle, workerID int, req request.Request) {
	for _, r := range m {
		r.RequestCompleted(cycle, workerID, req)
	}
}

func (m MultiReporter) RequestBlocked(cycle int, req request.Request) {
	for _, r := range m {
		r.RequestBlocked(cycle, req)
	}
}

func (m MultiReporter) Status(cycle, queueLen, poolSize int) {
	for _, r := range m {
		r.Status(cycle, queueLen, poolSize)
	}
}

func (m MultiReporter) Summary(s Summary) {
	for _, r := range m {
		r.Summary(s)
	}
}

var (
	_ Reporter = NopReporter{}
	_ Reporter = MultiReporter(nil)
)
