package event

import (
	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/scaling"
	"github.com/Iron-Ham/lbsim/internal/sim"
)

// Emitter is a sim.Reporter that publishes every call to a Bus.
type Emitter struct {
	bus *Bus
}

// NewEmitter creates an Emitter publishing to bus.
func NewEmitter(bus *Bus) *Emitter {
	return &Emitter{bus: bus}
}

var _ sim.Reporter = (*Emitter)(nil)

func (e *Emitter) Header(h sim.Header) {
	e.bus.Publish(NewHeaderEvent(h))
}

func (e *Emitter) Event(cycle int, message string) {
	e.bus.Publish(NewMessageEvent(cycle, message))
}

func (e *Emitter) Scaled(cycle int, d scaling.Decision) {
	e.bus.Publish(NewPoolScaledEvent(cycle, d))
}

func (e *Emitter) WorkerAdded(cycle, workerID int) {
	e.bus.Publish(NewWorkerAddedEvent(cycle, workerID))
}

func (e *Emitter) WorkerRemoved(cycle, workerID int) {
	e.bus.Publish(NewWorkerRemovedEvent(cycle, workerID))
}

func (e *Emitter) RequestStarted(cycle, workerID int, r request.Request) {
	e.bus.Publish(NewRequestStartedEvent(cycle, workerID, r))
}

func (e *Emitter) RequestCompleted(cycle, workerID int, r request.Request) {
	e.bus.Publish(NewRequestCompletedEvent(cycle, workerID, r))
}

func (e *Emitter) RequestBlocked(cycle int, r request.Request) {
	e.bus.Publish(NewRequestBlockedEvent(cycle, r))
}

func (e *Emitter) Status(cycle, queueLen, poolSize int) {
	e.bus.Publish(NewStatusEvent(cycle, queueLen, poolSize))
}

func (e *Emitter) Summary(s sim.Summary) {
	e.bus.Publish(NewSummaryEvent(s))
}
