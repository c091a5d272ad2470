package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every deck shuffle in a session draws from the one source so a seed
// replays the whole session.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed unchanged when it is set, otherwise a seed derived from
// the wall clock. The second return value reports whether the seed was chosen.
func Seed(seed int64) (int64, bool) {
	if seed != 0 {
		return seed, false
	}
	return time.Now().UnixNano(), true
}

// Derive returns the seed for the n-th independent stream of a parent seed.
func Derive(parent int64, n int) int64 {
	return int64(mix(uint64(parent) + uint64(n)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
