package app

import (
	"math/rand"
	"sync"
)

// Roller is the random source of the work and rob actions.
type Roller interface {
	// Int63n returns a uniform integer in [0, n).
	Int63n(n int64) int64
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// lockedRoller makes a seeded *rand.Rand safe for concurrent actions.
type lockedRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a Roller seeded with seed.
func NewRoller(seed int64) Roller {
	return &lockedRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRoller) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Int63n(n)
}

func (r *lockedRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
