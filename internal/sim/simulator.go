package sim

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/lbsim/internal/errors"
	"github.com/Iron-Ham/lbsim/internal/logging"
	"github.com/Iron-Ham/lbsim/internal/queue"
	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/scaling"
	"github.com/Iron-Ham/lbsim/internal/worker"
)

// Option configures a Simulator.
type Option func(*Simulator)

// WithReporter sets the event sink. Use MultiReporter for several sinks.
func WithReporter(r Reporter) Option {
	return func(s *Simulator) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithRand replaces the seeded default random source.
func WithRand(rng request.Rand) Option {
	return func(s *Simulator) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLogger sets the structured debug logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTickConcurrency bounds the goroutines used when Config.ParallelTicks
// is set. Values below 1 mean GOMAXPROCS.
func WithTickConcurrency(n int) Option {
	return func(s *Simulator) {
		s.tickConcurrency = n
	}
}

// Simulator is the simulation clock and orchestrator. It is not safe for
// concurrent use; one goroutine drives it.
type Simulator struct {
	cfg      Config
	queue    *queue.RequestQueue
	pool     *worker.Pool
	policy   *scaling.Policy
	gen      *request.Generator
	rng      request.Rand
	reporter Reporter
	logger   *logging.Logger

	tickConcurrency int
	cycle           int
	initialized     bool
}

// New creates a Simulator with an empty queue and pool. It fails when cfg
// does not pass Validate.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid simulation config: %w", errors.Join(errs...))
	}

	s := &Simulator{
		cfg:      cfg,
		queue:    queue.New(),
		pool:     worker.NewPool(),
		reporter: NopReporter{},
		logger:   logging.NopLogger(),
		policy: scaling.NewPolicy(
			scaling.WithMinPerWorker(cfg.MinPerWorker),
			scaling.WithMaxPerWorker(cfg.MaxPerWorker),
			scaling.WithCooldown(cfg.Cooldown),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = request.NewRand(cfg.Seed)
	}
	if s.tickConcurrency < 1 {
		s.tickConcurrency = runtime.GOMAXPROCS(0)
	}
	s.gen = request.NewGenerator(s.rng, cfg.MinDuration, cfg.MaxDuration)
	s.logger = s.logger.WithComponent("sim")
	return s, nil
}

// Initialize reports the header, creates the initial workers and seeds the
// queue through Submit, so blocked seed requests are rejected like any other.
func (s *Simulator) Initialize() error {
	if s.initialized {
		return fmt.Errorf("initialize: simulator already initialized")
	}

	s.reporter.Header(Header{
		InitialWorkers: s.cfg.InitialWorkers,
		TotalCycles:    s.cfg.TotalCycles,
		MinDuration:    s.cfg.MinDuration,
		MaxDuration:    s.cfg.MaxDuration,
		InitialQueue:   s.cfg.SeedSize(),
		Blocked:        s.cfg.Blocked,
	})
	s.reporter.Event(s.cycle, "Initializing worker pool")

	for range s.cfg.InitialWorkers {
		w := s.pool.Add()
		s.reporter.WorkerAdded(s.cycle, w.ID())
	}

	accepted := 0
	for range s.cfg.SeedSize() {
		if s.Submit(s.gen.Next()) {
			accepted++
		}
	}

	s.initialized = true
	s.logger.Debug("initialized",
		"workers", s.pool.Len(),
		"seeded", accepted,
		"blocked", s.cfg.SeedSize()-accepted,
	)
	s.reporter.Event(s.cycle, "Initialization complete")
	s.reportStatus()
	return nil
}

// reportStatus emits a status snapshot and logs the busy/idle split.
func (s *Simulator) reportStatus() {
	busy, idle := s.pool.Counts()
	s.logger.Debug("status",
		"cycle", s.cycle,
		"queue_len", s.queue.Len(),
		"busy", busy,
		"idle", idle,
	)
	s.reporter.Status(s.cycle, s.queue.Len(), s.pool.Len())
}

// Submit is the single ingress path. A request whose source falls in a
// blocked range is reported and dropped; anything else is enqueued.
func (s *Simulator) Submit(r request.Request) bool {
	if s.cfg.Blocked.Blocks(r.Source) {
		s.reporter.RequestBlocked(s.cycle, r)
		return false
	}
	s.queue.Push(r)
	return true
}

// RunCycle executes one cycle and advances the clock.
func (s *Simulator) RunCycle() error {
	if !s.initialized {
		return errors.NewInvariantError("cycle", errors.ErrNotInitialized).WithCycle(s.cycle)
	}

	s.arrive()
	if err := s.advance(); err != nil {
		return err
	}
	if err := s.dispatch(); err != nil {
		return err
	}
	if err := s.scale(); err != nil {
		return err
	}
	if s.cycle%s.cfg.StatusInterval() == 0 {
		s.reportStatus()
	}
	s.cycle++
	return nil
}

// Run initializes the simulator if needed, then runs cycles until the
// configured total. Cancelling ctx stops the loop between cycles; the summary
// is still reported and ctx's error returned.
func (s *Simulator) Run(ctx context.Context) error {
	if !s.initialized {
		if err := s.Initialize(); err != nil {
			return err
		}
	}

	s.reporter.Event(s.cycle, "RUN: Starting simulation")
	for s.cycle < s.cfg.TotalCycles {
		if err := ctx.Err(); err != nil {
			s.logger.Info("run cancelled", "cycle", s.cycle, "error", err)
			s.reporter.Event(s.cycle, "RUN: Simulation cancelled")
			s.reporter.Summary(s.summary(true))
			return err
		}
		if err := s.RunCycle(); err != nil {
			s.logger.Error("run aborted", "cycle", s.cycle, "error", err)
			return err
		}
	}
	s.reporter.Event(s.cycle, "RUN: Simulation complete")
	s.reporter.Summary(s.summary(false))
	return nil
}

func (s *Simulator) summary(cancelled bool) Summary {
	return Summary{
		Cycles:       s.cycle,
		FinalWorkers: s.pool.Len(),
		FinalQueue:   s.queue.Len(),
		Cancelled:    cancelled,
	}
}

// arrive submits at most one generated request.
func (s *Simulator) arrive() {
	if s.rng.Float64() < s.cfg.ArrivalProb {
		s.Submit(s.gen.Next())
	}
}

// advance ticks every busy worker, then reports completions in pool order.
func (s *Simulator) advance() error {
	workers := s.pool.Workers()
	done := make([]bool, len(workers))

	if s.cfg.ParallelTicks {
		p := pool.New().WithMaxGoroutines(s.tickConcurrency)
		for i, w := range workers {
			if !w.IsBusy() {
				continue
			}
			p.Go(func() {
				done[i] = w.Tick()
			})
		}
		p.Wait()
	} else {
		for i, w := range workers {
			if w.IsBusy() {
				done[i] = w.Tick()
			}
		}
	}

	for i, w := range workers {
		if !done[i] {
			continue
		}
		r, ok := w.Current()
		if !ok {
			return errors.NewInvariantError("service", errors.ErrWorkerNotFound).
				WithCycle(s.cycle).WithWorkerID(w.ID())
		}
		s.reporter.RequestCompleted(s.cycle, w.ID(), r)
		w.SetIdle()
	}
	return nil
}

// dispatch hands queued requests to idle workers in pool order.
func (s *Simulator) dispatch() error {
	for _, w := range s.pool.Workers() {
		if s.queue.IsEmpty() {
			return nil
		}
		if w.IsBusy() {
			continue
		}
		r, err := s.queue.Pop()
		if err != nil {
			return errors.NewInvariantError("dispatch", err).WithCycle(s.cycle).WithWorkerID(w.ID())
		}
		if err := w.Assign(r); err != nil {
			return errors.NewInvariantError("dispatch", err).WithCycle(s.cycle).WithWorkerID(w.ID())
		}
		s.reporter.RequestStarted(s.cycle, w.ID(), r)
	}
	return nil
}

// scale applies at most one pool change and starts a cooldown only when the
// pool actually changed.
func (s *Simulator) scale() error {
	d := s.policy.Evaluate(s.cycle, s.queue.Len(), s.pool.Len())

	switch d.Action {
	case scaling.ActionScaleUp:
		s.reporter.Scaled(s.cycle, d)
		w := s.pool.Add()
		s.reporter.WorkerAdded(s.cycle, w.ID())
		s.policy.Record(s.cycle)
		s.logger.Debug("scaled up", "cycle", s.cycle, "worker_id", w.ID(), "reason", d.Reason)

	case scaling.ActionScaleDown:
		s.reporter.Scaled(s.cycle, d)
		id, ok := s.pool.RemoveFirstIdle()
		if !ok {
			s.logger.Debug("scale down skipped: no idle worker", "cycle", s.cycle)
			break
		}
		s.reporter.WorkerRemoved(s.cycle, id)
		s.policy.Record(s.cycle)
		s.logger.Debug("scaled down", "cycle", s.cycle, "worker_id", id, "reason", d.Reason)
	}

	if s.pool.Len() < 1 {
		return errors.NewInvariantError("scale", errors.ErrPoolExhausted).WithCycle(s.cycle)
	}
	return nil
}

// Cycle returns the current clock value.
func (s *Simulator) Cycle() int { return s.cycle }

// QueueLen returns the number of queued requests.
func (s *Simulator) QueueLen() int { return s.queue.Len() }

// PoolSize returns the number of workers.
func (s *Simulator) PoolSize() int { return s.pool.Len() }

// Config returns the parameters the simulator was built with.
func (s *Simulator) Config() Config { return s.cfg }

// LastScaleCycle returns the cycle of the most recent pool change.
func (s *Simulator) LastScaleCycle() int { return s.policy.LastScaleCycle() }

// Workers returns a snapshot of every worker in pool order.
func (s *Simulator) Workers() []worker.Snapshot {
	workers := s.pool.Workers()
	out := make([]worker.Snapshot, len(workers))
	for i, w := range workers {
		out[i] = w.Snapshot()
	}
	return out
}

// Queued returns a copy of the queue contents, oldest first.
func (s *Simulator) Queued() []request.Request {
	return s.queue.Snapshot()
}
