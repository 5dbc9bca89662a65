package rng

import "math/rand"

// Source yields values in [0, 1). Every weighted choice in the engine draws
// from a caller-supplied Source so decisions replay exactly under a seed.
type Source interface {
	Next() float64
}

// Rand is a seeded Source backed by math/rand. Not safe for concurrent use;
// each AI player owns its own.
type Rand struct {
	r *rand.Rand
}

// New returns a Rand seeded with seed. A zero seed is replaced with 1 so an
// unset flag still produces a reproducible stream.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

func (r *Rand) Next() float64 { return r.r.Float64() }

// Func adapts a plain function to Source.
type Func func() float64

func (f Func) Next() float64 { return f() }

// Sequence replays fixed values in order, wrapping around at the end.
// An empty Sequence always yields 0.
type Sequence struct {
	vals []float64
	i    int
}

func NewSequence(vals ...float64) *Sequence {
	return &Sequence{vals: vals}
}

func (s *Sequence) Next() float64 {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}
