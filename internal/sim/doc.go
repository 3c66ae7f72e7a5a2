// Package sim drives the discrete-time load-balancing simulation.
//
// A [Simulator] owns the request queue, the worker pool and the scaling
// policy. Each call to [Simulator.RunCycle] performs one cycle in a fixed
// order:
//
//  1. Arrival: with probability Config.ArrivalProb one generated request is
//     submitted.
//  2. Service: every busy worker advances by one cycle; completed requests
//     are reported and their workers released.
//  3. Dispatch: idle workers, in pool order, take requests from the queue.
//     A worker freed during service is eligible in the same cycle.
//  4. Scaling: the policy may add one worker or remove one idle worker.
//  5. Status: a snapshot is reported every [Simulator.StatusInterval] cycles.
//
// Everything observable leaves the engine through the [Reporter] interface.
// Reporters are called synchronously and in cycle order, so a reporter sees
// exactly the sequence a single-threaded run would produce even when service
// advance runs workers in parallel.
//
// # Basic Usage
//
//	s, err := sim.New(cfg, sim.WithReporter(journal), sim.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := s.Initialize(); err != nil {
//	    return err
//	}
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
package sim
