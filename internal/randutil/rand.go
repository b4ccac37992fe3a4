// Package randutil derives reproducible random streams for decks.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Stream returns an independent generator for the n-th consumer of a seed,
// e.g. one per table or per simulation worker. Stream(seed, 0) differs from
// New(seed) so a root generator and its children never share a sequence.
func Stream(seed int64, n int) *rand.Rand {
	u := mix(uint64(seed)^goldenRatio64) + uint64(n+1)*goldenRatio64
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed unless it is zero, in which case a seed is taken from now.
func Seed(seed int64, now time.Time) int64 {
	if seed != 0 {
		return seed
	}
	return now.UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
