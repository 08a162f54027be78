// Package shuffle implements an unbiased Fisher-Yates shuffle over any slice.
package shuffle

import "math/rand/v2"

// Source draws uniform integers in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Global is safe for concurrent use and backed by the runtime-seeded generator.
var Global Source = globalSource{}

// InPlace permutes items uniformly at random. Empty and single element slices are left untouched.
func InPlace[T any](items []T, src Source) {
	if src == nil {
		src = Global
	}
	for i := len(items) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Copy returns a shuffled copy and leaves items as it was.
func Copy[T any](items []T, src Source) []T {
	out := make([]T, len(items))
	copy(out, items)
	InPlace(out, src)
	return out
}
