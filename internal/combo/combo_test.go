package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/board"
)

func TestGenerate_ClassicBoard(t *testing.T) {
	set, err := Generate(board.MustNew(2, 3), 3)
	require.NoError(t, err)
	require.Equal(t, 8, set.Len())

	keys := map[string]bool{}
	for _, c := range set.All() {
		keys[c.Key()] = true
	}
	for _, want := range []string{
		"0,1,2", "3,4,5", "6,7,8", // rows
		"0,3,6", "1,4,7", "2,5,8", // columns
		"0,4,8", "2,4,6", // diagonals
	} {
		assert.True(t, keys[want], "missing combination %s", want)
	}
}

func TestGenerate_MatchesClosedForm(t *testing.T) {
	for _, d := range []int{2, 3} {
		for n := 3; n <= 7; n++ {
			for w := 3; w <= n; w++ {
				set, err := Generate(board.MustNew(d, n), w)
				require.NoError(t, err)
				assert.Equal(t, Count(d, n, w), set.Len(), "d=%d n=%d w=%d", d, n, w)
			}
		}
	}
}

func TestCount_KnownValues(t *testing.T) {
	assert.Equal(t, 8, Count(2, 3, 3))
	assert.Equal(t, 10, Count(2, 4, 4))
	assert.Equal(t, 24, Count(2, 4, 3))
	assert.Equal(t, 49, Count(3, 3, 3))
	assert.Equal(t, 76, Count(3, 4, 4))
	assert.Equal(t, 0, Count(2, 3, 4))
}

func TestGenerate_OffsetDiagonals(t *testing.T) {
	// On a 4x4 board with win length 3 the diagonals one step off the main
	// diagonal hold exactly three cells and must appear as combinations.
	set, err := Generate(board.MustNew(2, 4), 3)
	require.NoError(t, err)

	keys := map[string]bool{}
	for _, c := range set.All() {
		keys[c.Key()] = true
	}
	assert.True(t, keys["1,6,11"], "upper offset diagonal")
	assert.True(t, keys["4,9,14"], "lower offset diagonal")
	assert.True(t, keys["2,5,8"], "upper offset anti-diagonal")
	assert.True(t, keys["7,10,13"], "lower offset anti-diagonal")
}

func TestGenerate_Invariants(t *testing.T) {
	cases := []struct{ d, n, w int }{
		{2, 3, 3}, {2, 5, 3}, {2, 6, 4}, {3, 3, 3}, {3, 4, 3}, {3, 5, 4},
	}
	for _, tc := range cases {
		b := board.MustNew(tc.d, tc.n)
		set, err := Generate(b, tc.w)
		require.NoError(t, err)

		seen := map[string]bool{}
		for i := range set.Len() {
			c := set.At(i)
			require.Len(t, c, tc.w)

			key := c.Key()
			require.False(t, seen[key], "duplicate combination %s", key)
			seen[key] = true

			assertCollinear(t, b, c)
		}
	}
}

// assertCollinear checks that consecutive cells differ by one constant unit
// step, which implies distinct, pairwise collinear cells.
func assertCollinear(t *testing.T, b board.Board, c Combination) {
	t.Helper()

	first := b.Coords(c[0])
	second := b.Coords(c[1])
	step := make([]int, len(first))
	for axis := range first {
		step[axis] = second[axis] - first[axis]
		require.Contains(t, []int{-1, 0, 1}, step[axis], "combination %v", c)
	}
	require.False(t, board.Direction(step).IsZero(), "combination %v repeats a cell", c)

	for i := 1; i < len(c); i++ {
		prev := b.Coords(c[i-1])
		cur := b.Coords(c[i])
		for axis := range cur {
			require.Equal(t, step[axis], cur[axis]-prev[axis], "combination %v is not a straight line", c)
		}
	}
}

func TestGenerate_RejectsOutOfRange(t *testing.T) {
	_, err := Generate(board.MustNew(2, 3), 4)
	assert.Error(t, err)

	_, err = Generate(board.MustNew(2, 3), 1)
	assert.Error(t, err)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(board.MustNew(3, 4), 3)
	require.NoError(t, err)
	b, err := Generate(board.MustNew(3, 4), 3)
	require.NoError(t, err)
	assert.Equal(t, a.All(), b.All())
}

func TestCombination_Key(t *testing.T) {
	assert.Equal(t, Combination{2, 4, 6}.Key(), Combination{6, 4, 2}.Key())
	assert.True(t, Combination{0, 1, 2}.Contains(1))
	assert.False(t, Combination{0, 1, 2}.Contains(3))
}

func TestCache(t *testing.T) {
	c := NewCache()
	b := board.MustNew(2, 5)

	s1, err := c.Get(b, 4)
	require.NoError(t, err)
	s2, err := c.Get(b, 4)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, c.Len())

	s3, err := c.Get(b, 3)
	require.NoError(t, err)
	assert.NotSame(t, s1, s3)
	assert.Equal(t, Key{Dimension: 2, Size: 5, WinLength: 3}, s3.Key())
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(b, 9)
	assert.Error(t, err)
	assert.Equal(t, 2, c.Len())
}
