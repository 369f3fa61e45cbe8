package core

import "math/rand/v2"

// Rand is the random source used for generation and refill.
// Any *math/rand.Rand satisfies it; tests may supply scripted sources.
type Rand interface {
	// Intn returns a value in [0, n). n is always > 0.
	Intn(n int) int
}

// PCG is a seedable Rand backed by math/rand/v2's PCG generator.
type PCG struct {
	r *rand.Rand
}

// NewRand creates a deterministic random source for the given seed.
func NewRand(seed int64) *PCG {
	return &PCG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Intn returns a random int in [0, n).
func (p *PCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return p.r.IntN(n)
}
