// Package random provides the seedable randomness used for synthetic
// marketplace data, so tests can pin a seed and assert bounds.
package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the subset of *rand.Rand used by generators and normalizers
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Locked is a Source that is safe for concurrent use
type Locked struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a concurrency-safe Source seeded with seed
func New(seed uint64) *Locked {
	return &Locked{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeeded returns a Source seeded from the wall clock
func NewTimeSeeded() *Locked {
	return New(uint64(time.Now().UnixNano()))
}

// Float64 returns a value in [0.0, 1.0)
func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Float64()
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

// Between returns a value in [lo, hi)
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Pick returns a random element of items
func Pick[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}
