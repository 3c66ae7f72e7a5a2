// Package scaling provides queue-depth-based elastic scaling decisions for
// the simulated worker pool.
//
// Once per cycle the simulator asks a [Policy] whether the pool should grow,
// shrink, or hold. Thresholds are expressed per worker, so the target backlog
// scales with the pool, and a cooldown measured in cycles keeps single-cycle
// noise from causing the pool to flap.
//
// The core types are:
//
//   - [Policy]: Defines scaling rules (per-worker thresholds, cooldown)
//   - [Decision]: The output of policy evaluation: scale up, scale down, or hold
//
// # Usage
//
//	policy := scaling.NewPolicy(
//	    scaling.WithMinPerWorker(50),
//	    scaling.WithMaxPerWorker(80),
//	    scaling.WithCooldown(100),
//	)
//
//	d := policy.Evaluate(cycle, queue.Len(), pool.Len())
//	switch d.Action {
//	case scaling.ActionScaleUp:
//	    pool.Add()
//	    policy.Record(cycle)
//	case scaling.ActionScaleDown:
//	    if _, ok := pool.RemoveFirstIdle(); ok {
//	        policy.Record(cycle)
//	    }
//	}
//
// The policy only recommends; the caller applies the change and calls
// [Policy.Record] when the pool actually changed. A shrink that finds no idle
// worker therefore leaves the cooldown untouched.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package scaling
