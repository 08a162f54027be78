package shuffle

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInPlaceIsPermutation(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	for n := 0; n < 20; n++ {
		items := make([]int, n)
		for i := range items {
			items[i] = i * 3
		}
		shuffled := slices.Clone(items)
		InPlace(shuffled, src)

		sorted := slices.Clone(shuffled)
		slices.Sort(sorted)
		require.Equal(t, items, sorted, "n=%d", n)
	}
}

func TestCopyLeavesInputAlone(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	out := Copy(items, rand.New(rand.NewPCG(7, 7)))

	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
	assert.ElementsMatch(t, items, out)
}

func TestEmptyAndSingleAreNoOps(t *testing.T) {
	var empty []int
	InPlace(empty, nil)
	assert.Empty(t, empty)

	single := []int{42}
	InPlace(single, nil)
	assert.Equal(t, []int{42}, single)
}

func TestPositionsAreUniform(t *testing.T) {
	const (
		n      = 4
		trials = 40000
	)
	src := rand.New(rand.NewPCG(99, 100))
	var counts [n][n]int
	for range trials {
		items := []int{0, 1, 2, 3}
		InPlace(items, src)
		for pos, v := range items {
			counts[v][pos]++
		}
	}

	expected := float64(trials) / n
	for v := range n {
		for pos := range n {
			got := float64(counts[v][pos])
			assert.InDelta(t, expected, got, expected*0.05, "element %d at position %d", v, pos)
		}
	}
}

type fixedSource struct{ draws []int }

func (f *fixedSource) IntN(n int) int {
	v := f.draws[0] % n
	f.draws = f.draws[1:]
	return v
}

func TestDrawsFromHighIndexDown(t *testing.T) {
	// i=2 draws j=0, i=1 draws j=1: [a b c] -> [c b a] -> [c b a]
	items := []string{"a", "b", "c"}
	InPlace(items, &fixedSource{draws: []int{0, 1}})
	assert.Equal(t, []string{"c", "b", "a"}, items)
}
