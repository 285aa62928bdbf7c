package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// FillUniform fills buf with values drawn uniformly from [0, amplitude).
func (r *RNG) FillUniform(buf []float64, amplitude float64) {
	for i := range buf {
		buf[i] = r.r.Float64() * amplitude
	}
}
