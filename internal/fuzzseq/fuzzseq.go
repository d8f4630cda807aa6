// Package fuzzseq generates reproducible pseudorandom orderings for
// property-fuzz tests. Given the same seed, Shuffle always produces the
// same permutation, so a failing test prints a seed a developer can
// re-run directly instead of a flaky one-off.
package fuzzseq

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// next mixes seed and a counter through xxhash to produce the next value
// in a splitmix-style stream; this is the same "hash the state" idiom the
// teacher repo uses xxhash for (checksumming a meta page), repurposed here
// as a deterministic bit mixer instead of a corruption check.
func next(seed uint64, counter uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], seed)
	binary.LittleEndian.PutUint64(buf[8:16], counter)
	return xxhash.Sum64(buf[:])
}

// Shuffle returns a permutation of [0, n) derived deterministically from
// seed, via a Fisher-Yates shuffle driven by next() instead of math/rand.
func Shuffle(seed uint64, n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(next(seed, uint64(i)) % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Intn returns a deterministic value in [0, n) for the given seed and
// draw index, for fuzz tests that need a scalar decision (e.g. "insert or
// delete next?") rather than a full permutation.
func Intn(seed uint64, draw int, n int) int {
	if n <= 0 {
		return 0
	}
	return int(next(seed, uint64(draw)) % uint64(n))
}
