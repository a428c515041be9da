package engine

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every draw, enabling save/restore.
// Every draw consumes exactly one Int63 from the source so RestoreRNG
// can replay the stream by position alone.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a float in [0, 1).
func (r *RNG) Float64() float64 {
	r.pos++
	return float64(r.src.Int63()>>10) / (1 << 53)
}

// Intn returns an int in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.Intn(sides) + 1
}

// Range returns an integer in [lo, hi].
func (r *RNG) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Chance reports whether a draw falls under p.
func (r *RNG) Chance(p float64) bool {
	return r.Float64() < p
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Int63()
	}
	rng.pos = position
	return rng
}
