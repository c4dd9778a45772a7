package random

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffle_PreservesElements(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f", "g"}
	out := append([]string(nil), in...)

	require.NoError(t, Shuffle(out))

	sorted := append([]string(nil), out...)
	sort.Strings(sorted)
	assert.Equal(t, in, sorted)
}

func TestShuffle_EmptyAndSingle(t *testing.T) {
	var empty []int
	assert.NoError(t, Shuffle(empty))

	one := []int{42}
	require.NoError(t, Shuffle(one))
	assert.Equal(t, []int{42}, one)
}

func TestShuffle_ReachesEveryPosition(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 500 && len(seen) < 4; i++ {
		s := []int{0, 1, 2, 3}
		require.NoError(t, Shuffle(s))
		for pos, v := range s {
			if v == 0 {
				seen[pos] = true
			}
		}
	}
	assert.Len(t, seen, 4)
}
