// Package testutil provides testing utilities for lbsim tests.
package testutil

// ScriptedRand is a request.Rand that replays fixed sequences.
// When a sequence is exhausted its last value repeats; an empty sequence
// yields zero. IntN results are reduced modulo n so they stay in range.
type ScriptedRand struct {
	Floats []float64
	Ints   []int

	floatPos int
	intPos   int
}

// NewScriptedRand creates a ScriptedRand from the given sequences.
func NewScriptedRand(floats []float64, ints []int) *ScriptedRand {
	return &ScriptedRand{Floats: floats, Ints: ints}
}

// Float64 returns the next scripted float.
func (r *ScriptedRand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	i := min(r.floatPos, len(r.Floats)-1)
	r.floatPos++
	return r.Floats[i]
}

// IntN returns the next scripted integer modulo n.
func (r *ScriptedRand) IntN(n int) int {
	if n <= 0 {
		panic("testutil: IntN called with n <= 0")
	}
	if len(r.Ints) == 0 {
		return 0
	}
	i := min(r.intPos, len(r.Ints)-1)
	r.intPos++
	v := r.Ints[i] % n
	if v < 0 {
		v += n
	}
	return v
}

// Draws returns how many floats and ints have been consumed.
func (r *ScriptedRand) Draws() (floats, ints int) {
	return r.floatPos, r.intPos
}
