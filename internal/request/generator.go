package request

import (
	"math/rand/v2"
)

// Rand is the source of randomness the simulator draws from.
// *rand.Rand from math/rand/v2 satisfies it; tests supply scripted sources.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// NewRand returns a deterministic PCG-backed source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator synthesizes random requests.
type Generator struct {
	rng         Rand
	minDuration int
	maxDuration int
}

// NewGenerator creates a Generator producing durations in
// [minDuration, maxDuration]. If maxDuration < minDuration every request
// gets minDuration.
func NewGenerator(rng Rand, minDuration, maxDuration int) *Generator {
	if maxDuration < minDuration {
		maxDuration = minDuration
	}
	return &Generator{
		rng:         rng,
		minDuration: minDuration,
		maxDuration: maxDuration,
	}
}

// Next draws a request. Draw order is source octets, destination octets,
// duration, then job kind.
func (g *Generator) Next() Request {
	src := g.Addr()
	dst := g.Addr()
	duration := g.minDuration + g.rng.IntN(g.maxDuration-g.minDuration+1)
	kind := JobProcessing
	if g.rng.IntN(2) == 1 {
		kind = JobStreaming
	}
	return New(src, dst, duration, kind)
}

// Addr draws a random IPv4 address.
func (g *Generator) Addr() string {
	var addr uint32
	for range 4 {
		addr = addr<<8 | uint32(g.rng.IntN(256))
	}
	return FormatAddr(addr)
}
