// Package rng provides the seeded randomness used by the scheduler and the
// pool assigner. The same seed always yields the same sequence.
package rng

import "math/rand"

// New returns a generator seeded with seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Shuffle permutes s in place (Fisher-Yates).
func Shuffle[T any](r *rand.Rand, s []T) {
	r.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}
