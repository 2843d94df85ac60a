package board

import "math/rand/v2"

// DeadCellDivisor bounds how much of the board may be dead.
const DeadCellDivisor = 5

// MaxDeadCells returns floor(cells / 5).
func MaxDeadCells(b Board) int {
	return b.Cells() / DeadCellDivisor
}

// ClampDeadCells limits count to [0, MaxDeadCells(b)].
func ClampDeadCells(b Board, count int) int {
	return max(0, min(count, MaxDeadCells(b)))
}

// DeadCells draws a uniform random subset of cell indexes without
// replacement. The count is clamped with ClampDeadCells. The result is in
// draw order.
func DeadCells(rng *rand.Rand, b Board, count int) []int {
	count = ClampDeadCells(b, count)
	if count == 0 {
		return []int{}
	}

	// Partial Fisher-Yates over the index space.
	pool := make([]int, b.Cells())
	for i := range pool {
		pool[i] = i
	}
	for i := range count {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	out := make([]int, count)
	copy(out, pool[:count])
	return out
}
