package event

import (
	"time"

	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/scaling"
	"github.com/Iron-Ham/lbsim/internal/sim"
)

// Event type identifiers, "category.action".
const (
	TypeWorkerAdded      = "worker.added"
	TypeWorkerRemoved    = "worker.removed"
	TypePoolScaled       = "pool.scaled"
	TypeRequestStarted   = "request.started"
	TypeRequestCompleted = "request.completed"
	TypeRequestBlocked   = "request.blocked"
	TypeHeader           = "sim.header"
	TypeStatus           = "sim.status"
	TypeMessage          = "sim.message"
	TypeSummary          = "sim.summary"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns the "category.action" identifier.
	EventType() string

	// Cycle returns the simulation cycle the event belongs to.
	Cycle() int

	// Timestamp returns the wall-clock time the event was published.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	cycle     int
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Cycle() int           { return e.cycle }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string, cycle int) baseEvent {
	return baseEvent{
		eventType: eventType,
		cycle:     cycle,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Pool Events
// -----------------------------------------------------------------------------

// WorkerAddedEvent is emitted when a worker joins the pool.
type WorkerAddedEvent struct {
	baseEvent
	WorkerID int
}

// NewWorkerAddedEvent creates a WorkerAddedEvent.
func NewWorkerAddedEvent(cycle, workerID int) WorkerAddedEvent {
	return WorkerAddedEvent{
		baseEvent: newBaseEvent(TypeWorkerAdded, cycle),
		WorkerID:  workerID,
	}
}

// WorkerRemovedEvent is emitted when an idle worker leaves the pool.
type WorkerRemovedEvent struct {
	baseEvent
	WorkerID int
}

// NewWorkerRemovedEvent creates a WorkerRemovedEvent.
func NewWorkerRemovedEvent(cycle, workerID int) WorkerRemovedEvent {
	return WorkerRemovedEvent{
		baseEvent: newBaseEvent(TypeWorkerRemoved, cycle),
		WorkerID:  workerID,
	}
}

// PoolScaledEvent is emitted when the policy decides to grow or shrink the
// pool, before the change is applied.
type PoolScaledEvent struct {
	baseEvent
	Action scaling.Action
	Reason string
}

// NewPoolScaledEvent creates a PoolScaledEvent from a policy decision.
func NewPoolScaledEvent(cycle int, d scaling.Decision) PoolScaledEvent {
	return PoolScaledEvent{
		baseEvent: newBaseEvent(TypePoolScaled, cycle),
		Action:    d.Action,
		Reason:    d.Reason,
	}
}

// -----------------------------------------------------------------------------
// Request Events
// -----------------------------------------------------------------------------

// RequestStartedEvent is emitted when a request is dispatched to a worker.
type RequestStartedEvent struct {
	baseEvent
	WorkerID int
	Request  request.Request
}

// NewRequestStartedEvent creates a RequestStartedEvent.
func NewRequestStartedEvent(cycle, workerID int, r request.Request) RequestStartedEvent {
	return RequestStartedEvent{
		baseEvent: newBaseEvent(TypeRequestStarted, cycle),
		WorkerID:  workerID,
		Request:   r,
	}
}

// RequestCompletedEvent is emitted when a worker finishes a request.
type RequestCompletedEvent struct {
	baseEvent
	WorkerID int
	Request  request.Request
}

// NewRequestCompletedEvent creates a RequestCompletedEvent.
func NewRequestCompletedEvent(cycle, workerID int, r request.Request) RequestCompletedEvent {
	return RequestCompletedEvent{
		baseEvent: newBaseEvent(TypeRequestCompleted, cycle),
		WorkerID:  workerID,
		Request:   r,
	}
}

// RequestBlockedEvent is emitted when a submission is rejected by the
// blocklist.
type RequestBlockedEvent struct {
	baseEvent
	Request request.Request
}

// NewRequestBlockedEvent creates a RequestBlockedEvent.
func NewRequestBlockedEvent(cycle int, r request.Request) RequestBlockedEvent {
	return RequestBlockedEvent{
		baseEvent: newBaseEvent(TypeRequestBlocked, cycle),
		Request:   r,
	}
}

// -----------------------------------------------------------------------------
// Run Events
// -----------------------------------------------------------------------------

// HeaderEvent is emitted once when a run is initialized.
type HeaderEvent struct {
	baseEvent
	Header sim.Header
}

// NewHeaderEvent creates a HeaderEvent at cycle 0.
func NewHeaderEvent(h sim.Header) HeaderEvent {
	return HeaderEvent{
		baseEvent: newBaseEvent(TypeHeader, 0),
		Header:    h,
	}
}

// StatusEvent is a periodic queue and pool snapshot.
type StatusEvent struct {
	baseEvent
	QueueLen int
	PoolSize int
}

// NewStatusEvent creates a StatusEvent.
func NewStatusEvent(cycle, queueLen, poolSize int) StatusEvent {
	return StatusEvent{
		baseEvent: newBaseEvent(TypeStatus, cycle),
		QueueLen:  queueLen,
		PoolSize:  poolSize,
	}
}

// MessageEvent carries a free-form lifecycle or scaling message.
type MessageEvent struct {
	baseEvent
	Message string
}

// NewMessageEvent creates a MessageEvent.
func NewMessageEvent(cycle int, message string) MessageEvent {
	return MessageEvent{
		baseEvent: newBaseEvent(TypeMessage, cycle),
		Message:   message,
	}
}

// SummaryEvent is emitted once when a run ends.
type SummaryEvent struct {
	baseEvent
	Summary sim.Summary
}

// NewSummaryEvent creates a SummaryEvent stamped with the final cycle.
func NewSummaryEvent(s sim.Summary) SummaryEvent {
	return SummaryEvent{
		baseEvent: newBaseEvent(TypeSummary, s.Cycles),
		Summary:   s,
	}
}
