// Package event provides a pub-sub event bus that carries simulation events
// to observers such as metrics and tracing.
//
// The simulator itself only knows the sim.Reporter interface. [Emitter]
// implements that interface by publishing a typed event per call, so any
// number of subscribers can watch a run without the engine depending on them.
//
// # Main Types
//
//   - [Event]: Interface that all events implement: EventType, Cycle, Timestamp
//   - [Bus]: Synchronous pub-sub dispatcher with thread-safe operations
//   - [Emitter]: sim.Reporter adapter that publishes to a Bus
//
// # Event Categories
//
// Pool:
//   - [WorkerAddedEvent], [WorkerRemovedEvent], [PoolScaledEvent]
//
// Requests:
//   - [RequestStartedEvent], [RequestCompletedEvent], [RequestBlockedEvent]
//
// Run:
//   - [HeaderEvent], [StatusEvent], [MessageEvent], [SummaryEvent]
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously in the publisher's goroutine and are protected against
// panics: a panicking handler will not prevent other handlers from being
// called.
//
// # Basic Usage
//
//	bus := event.NewBus(nil)
//
//	bus.Subscribe(event.TypeWorkerAdded, func(e event.Event) {
//	    added := e.(event.WorkerAddedEvent)
//	    fmt.Printf("worker %d joined at cycle %d\n", added.WorkerID, added.Cycle())
//	})
//
//	s, _ := sim.New(cfg, sim.WithReporter(event.NewEmitter(bus)))
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - worker.added, worker.removed, pool.scaled
//   - request.started, request.completed, request.blocked
//   - sim.header, sim.status, sim.message, sim.summary
package event
