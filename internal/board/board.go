// Package board models the cells of an n-dimensional tic-tac-toe board.
//
// Cells are addressed by a linear index in [0, n^d). The index is the
// mixed-radix (base n) number whose digits are the cell coordinates, with
// coordinate 0 as the least significant digit:
//
//	index = c0 + c1*n + c2*n*n
//
// Only dimensions 2 and 3 are supported.
package board

import (
	"fmt"
)

// Supported dimension and size limits.
const (
	MinDimension = 2
	MaxDimension = 3
	MinSize      = 3
	MaxSize      = 30
)

// Board is an immutable description of board geometry.
type Board struct {
	dimension int
	size      int
	cells     int
}

// New creates a board of the given dimension and size (cells per axis).
func New(dimension, size int) (Board, error) {
	if dimension < MinDimension || dimension > MaxDimension {
		return Board{}, fmt.Errorf("dimension %d out of range [%d, %d]", dimension, MinDimension, MaxDimension)
	}
	if size < MinSize || size > MaxSize {
		return Board{}, fmt.Errorf("size %d out of range [%d, %d]", size, MinSize, MaxSize)
	}
	cells := 1
	for range dimension {
		cells *= size
	}
	return Board{dimension: dimension, size: size, cells: cells}, nil
}

// MustNew is New for known-good geometry. It panics on invalid input.
func MustNew(dimension, size int) Board {
	b, err := New(dimension, size)
	if err != nil {
		panic(err)
	}
	return b
}

// Dimension returns the number of axes.
func (b Board) Dimension() int { return b.dimension }

// Size returns the number of cells along each axis.
func (b Board) Size() int { return b.size }

// Cells returns the total number of cells, size^dimension.
func (b Board) Cells() int { return b.cells }

// Valid reports whether i is a cell index of this board.
func (b Board) Valid(i int) bool {
	return i >= 0 && i < b.cells
}

// Coords decomposes a linear index into its coordinates.
// The result has Dimension() entries; out-of-range indexes are reduced
// modulo the cell count so the function stays total.
func (b Board) Coords(i int) []int {
	coords := make([]int, b.dimension)
	b.coordsInto(i, coords)
	return coords
}

func (b Board) coordsInto(i int, coords []int) {
	if b.cells > 0 {
		i %= b.cells
		if i < 0 {
			i += b.cells
		}
	}
	for axis := range b.dimension {
		coords[axis] = i % b.size
		i /= b.size
	}
}

// Index composes coordinates into a linear index. Coordinates outside
// [0, size) are reduced modulo size, and missing trailing coordinates
// count as zero.
func (b Board) Index(coords []int) int {
	idx := 0
	mul := 1
	for axis := range b.dimension {
		c := 0
		if axis < len(coords) {
			c = coords[axis] % b.size
			if c < 0 {
				c += b.size
			}
		}
		idx += c * mul
		mul *= b.size
	}
	return idx
}

// InBounds reports whether every coordinate lies on the board.
func (b Board) InBounds(coords []int) bool {
	if len(coords) != b.dimension {
		return false
	}
	for _, c := range coords {
		if c < 0 || c >= b.size {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer, e.g. "3x3x3".
func (b Board) String() string {
	switch b.dimension {
	case 2:
		return fmt.Sprintf("%dx%d", b.size, b.size)
	case 3:
		return fmt.Sprintf("%dx%dx%d", b.size, b.size, b.size)
	default:
		return fmt.Sprintf("%d^%d", b.size, b.dimension)
	}
}
