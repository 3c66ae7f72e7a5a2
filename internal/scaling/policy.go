package scaling

import (
	"fmt"
	"sync"
)

// Default policy values.
const (
	defaultMinPerWorker = 50
	defaultMaxPerWorker = 80
	defaultCooldown     = 100
)

// Option configures a Policy.
type Option func(*Policy)

// WithMinPerWorker sets the per-worker backlog below which the pool shrinks.
// Scale down is recommended when depth < minPerWorker * poolSize.
func WithMinPerWorker(n int) Option {
	return func(p *Policy) { p.minPerWorker = n }
}

// WithMaxPerWorker sets the per-worker backlog above which the pool grows.
// Scale up is recommended when depth > maxPerWorker * poolSize.
func WithMaxPerWorker(n int) Option {
	return func(p *Policy) { p.maxPerWorker = n }
}

// WithCooldown sets the minimum number of cycles between scaling actions.
func WithCooldown(cycles int) Option {
	return func(p *Policy) { p.cooldown = cycles }
}

// WithLastScaleCycle sets the cycle the cooldown is measured from before any
// action has been recorded. Defaults to 0, the cycle the pool is created in.
func WithLastScaleCycle(cycle int) Option {
	return func(p *Policy) { p.lastScaleCycle = cycle }
}

// Policy defines the rules for elastic scaling decisions.
// It is safe for concurrent use.
type Policy struct {
	mu             sync.Mutex
	minPerWorker   int
	maxPerWorker   int
	cooldown       int
	lastScaleCycle int
}

// NewPolicy creates a Policy with the given options.
// Unset options use defaults.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		minPerWorker: defaultMinPerWorker,
		maxPerWorker: defaultMaxPerWorker,
		cooldown:     defaultCooldown,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Eligible reports whether the cooldown has elapsed at the given cycle.
func (p *Policy) Eligible(cycle int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eligibleLocked(cycle)
}

func (p *Policy) eligibleLocked(cycle int) bool {
	return cycle-p.lastScaleCycle >= p.cooldown
}

// Evaluate inspects queue depth and pool size at the given cycle and returns
// a scaling decision. Growth is checked before shrinkage and the two are
// mutually exclusive. A single-worker pool is never asked to shrink.
//
// Evaluate does not start a cooldown; call Record once the pool has changed.
func (p *Policy) Evaluate(cycle, queueDepth, poolSize int) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.eligibleLocked(cycle) {
		return Decision{
			Action:   ActionNone,
			Reason:   fmt.Sprintf("cooldown active (last action at cycle %d, cooldown %d)", p.lastScaleCycle, p.cooldown),
			Cooldown: true,
		}
	}

	upper := p.maxPerWorker * poolSize
	if queueDepth > upper {
		return Decision{
			Action: ActionScaleUp,
			Delta:  1,
			Reason: fmt.Sprintf("queue depth %d exceeds %d (%d per worker x %d workers)", queueDepth, upper, p.maxPerWorker, poolSize),
		}
	}

	lower := p.minPerWorker * poolSize
	if queueDepth < lower && poolSize > 1 {
		return Decision{
			Action: ActionScaleDown,
			Delta:  -1,
			Reason: fmt.Sprintf("queue depth %d below %d (%d per worker x %d workers)", queueDepth, lower, p.minPerWorker, poolSize),
		}
	}

	return Decision{
		Action: ActionNone,
		Reason: "no scaling needed",
	}
}

// Record starts a new cooldown at the given cycle. Call it only after a
// recommended action actually changed the pool.
func (p *Policy) Record(cycle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastScaleCycle = cycle
}

// LastScaleCycle returns the cycle of the most recent recorded action.
func (p *Policy) LastScaleCycle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastScaleCycle
}

// Thresholds returns the configured per-worker thresholds and cooldown.
func (p *Policy) Thresholds() (minPerWorker, maxPerWorker, cooldown int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minPerWorker, p.maxPerWorker, p.cooldown
}
