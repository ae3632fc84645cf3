// Package host provides the default collaborators the VM uses to reach the
// outside world: randomness, the wall clock, the terminal and text files.
package host

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is a RandomSource backed by math/rand/v2.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a source seeded from the current time.
func NewRandom() *Random {
	return NewSeededRandom(uint64(time.Now().UnixNano()))
}

// NewSeededRandom returns a deterministic source. Two sources with the same seed
// produce the same sequence.
func NewSeededRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NextInt returns an integer in [low, high]. high must not be less than low.
func (r *Random) NextInt(low, high int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := uint64(high - low)
	if span == ^uint64(0) {
		return int64(r.rng.Uint64())
	}
	return low + int64(r.rng.Uint64N(span+1))
}

// NextFloat returns a real in [0, 1).
func (r *Random) NextFloat() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
