package utils

import (
	"math/rand"
	"time"
)

// RandSource is a seeded uniform random number generator. It is the
// production implementation of the swarm's injected randomness. A RandSource
// is not safe for concurrent use; each optimization run owns its own.
type RandSource struct {
	seed int64
	rng  *rand.Rand
}

// NewRandSource creates a new random source with the given seed. A zero seed
// is replaced by a time-derived one, which Seed reports so the run can be
// replayed.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the source was created with.
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// SequenceSource replays a fixed list of values, cycling when exhausted. It
// exists for tests that need to pin every draw.
type SequenceSource struct {
	values []float64
	next   int
}

// NewSequenceSource returns a source that yields values in order.
func NewSequenceSource(values ...float64) *SequenceSource {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &SequenceSource{values: append([]float64(nil), values...)}
}

// Float64 returns the next value of the sequence.
func (s *SequenceSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Draws returns how many values have been consumed.
func (s *SequenceSource) Draws() int {
	return s.next
}
