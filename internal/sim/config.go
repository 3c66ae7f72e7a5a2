package sim

import (
	"fmt"

	"github.com/Iron-Ham/lbsim/internal/errors"
	"github.com/Iron-Ham/lbsim/internal/request"
)

// Config holds the engine parameters for one run.
type Config struct {
	// InitialWorkers is the pool size at initialization. The queue is seeded
	// with InitialWorkers*100 requests.
	InitialWorkers int

	// TotalCycles is the number of cycles Run executes.
	TotalCycles int

	// MinPerWorker and MaxPerWorker are the per-worker queue depth thresholds
	// below which the pool shrinks and above which it grows.
	MinPerWorker int
	MaxPerWorker int

	// Cooldown is the minimum number of cycles between two pool changes.
	Cooldown int

	// MinDuration and MaxDuration bound generated request durations.
	MinDuration int
	MaxDuration int

	// ArrivalProb is the per-cycle probability of one new request.
	ArrivalProb float64

	// Blocked lists the source ranges rejected at submission.
	Blocked request.Blocklist

	// Seed seeds the default random source when no WithRand option is given.
	Seed uint64

	// ParallelTicks advances busy workers concurrently during service.
	ParallelTicks bool
}

// DefaultConfig returns the stock simulation parameters.
func DefaultConfig() Config {
	return Config{
		InitialWorkers: 10,
		TotalCycles:    10000,
		MinPerWorker:   50,
		MaxPerWorker:   80,
		Cooldown:       100,
		MinDuration:    5,
		MaxDuration:    20,
		ArrivalProb:    0.25,
	}
}

// SeedSize is the number of requests queued at initialization.
func (c Config) SeedSize() int {
	return c.InitialWorkers * 100
}

// StatusInterval is the spacing, in cycles, of periodic status reports.
func (c Config) StatusInterval() int {
	return max(1, c.TotalCycles/20)
}

// Validate reports every parameter the engine cannot run with.
func (c Config) Validate() []error {
	var errs []error
	check := func(ok bool, field string, value any, msg string) {
		if !ok {
			errs = append(errs, errors.NewValidationError(msg).WithField(field).WithValue(value))
		}
	}

	check(c.InitialWorkers >= 1, "InitialWorkers", c.InitialWorkers, "must be at least 1")
	check(c.TotalCycles >= 0, "TotalCycles", c.TotalCycles, "must not be negative")
	check(c.MinPerWorker >= 0, "MinPerWorker", c.MinPerWorker, "must not be negative")
	check(c.MaxPerWorker >= c.MinPerWorker, "MaxPerWorker", c.MaxPerWorker,
		fmt.Sprintf("must be at least MinPerWorker (%d)", c.MinPerWorker))
	check(c.Cooldown >= 0, "Cooldown", c.Cooldown, "must not be negative")
	check(c.MinDuration >= 1, "MinDuration", c.MinDuration, "must be at least 1")
	check(c.MaxDuration >= c.MinDuration, "MaxDuration", c.MaxDuration,
		fmt.Sprintf("must be at least MinDuration (%d)", c.MinDuration))
	check(c.ArrivalProb >= 0 && c.ArrivalProb <= 1, "ArrivalProb", c.ArrivalProb, "must be between 0 and 1")

	return errs
}
