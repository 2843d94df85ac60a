// Package combo generates win combinations: every line of exactly winLength
// collinear cells on a board.
//
// Generation runs in two phases. First, every maximal run of in-bounds
// collinear cells is enumerated by walking each canonical direction from
// each cell that starts a run (its predecessor is off the board). This one
// walk covers axis lines, full diagonals and the shorter offset diagonals
// uniformly in two and three dimensions. Second, each run of length
// L >= winLength is cut into its L-winLength+1 contiguous windows.
//
// A Set is immutable once built; Cache memoizes sets per
// (dimension, size, winLength).
package combo

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/hypertoe/internal/board"
)

// Combination is an ordered line of cell indexes.
type Combination []int

// Key returns the canonical identity of the combination: its cells sorted
// ascending. A line and its reverse share a key.
func (c Combination) Key() string {
	sorted := slices.Clone(c)
	slices.Sort(sorted)
	var sb strings.Builder
	for i, id := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(id))
	}
	return sb.String()
}

// Contains reports whether cell is part of the combination.
func (c Combination) Contains(cell int) bool {
	return slices.Contains(c, cell)
}

// Key identifies a generated set.
type Key struct {
	Dimension int
	Size      int
	WinLength int
}

func (k Key) String() string {
	return fmt.Sprintf("d=%d n=%d w=%d", k.Dimension, k.Size, k.WinLength)
}

// Set is the immutable result of Generate.
type Set struct {
	key    Key
	combos []Combination
}

// Key returns the triple the set was generated for.
func (s *Set) Key() Key { return s.key }

// Len returns the number of combinations.
func (s *Set) Len() int { return len(s.combos) }

// At returns the i-th combination in generation order. The returned slice
// must not be modified.
func (s *Set) At(i int) Combination { return s.combos[i] }

// All returns a copy of the combination list in generation order.
func (s *Set) All() []Combination {
	out := make([]Combination, len(s.combos))
	for i, c := range s.combos {
		out[i] = slices.Clone(c)
	}
	return out
}

// Generate builds the win combinations for b and winLength.
// winLength must lie in [2, b.Size()]; callers clamp before calling.
func Generate(b board.Board, winLength int) (*Set, error) {
	if winLength < 2 || winLength > b.Size() {
		return nil, fmt.Errorf("win length %d out of range [2, %d]", winLength, b.Size())
	}

	runs := maximalRuns(b)

	set := &Set{key: Key{Dimension: b.Dimension(), Size: b.Size(), WinLength: winLength}}
	seen := make(map[string]struct{})
	for _, run := range runs {
		if len(run) < winLength {
			continue
		}
		for start := 0; start+winLength <= len(run); start++ {
			window := Combination(slices.Clone(run[start : start+winLength]))
			key := window.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			set.combos = append(set.combos, window)
		}
	}
	return set, nil
}

// maximalRuns returns every maximal line of at least two cells, once each,
// in direction order then start-cell order.
func maximalRuns(b board.Board) [][]int {
	var runs [][]int
	seen := make(map[string]struct{})
	for _, dir := range b.Directions() {
		for cell := range b.Cells() {
			if !b.RunStart(cell, dir) {
				continue
			}
			run := b.NeighborsAlongDirection(cell, dir, b.Size())
			if len(run) < 2 {
				continue
			}
			key := Combination(run).Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			runs = append(runs, run)
		}
	}
	return runs
}

// Count is the closed-form number of combinations Generate returns:
//
//	((n + 2(n-w+1))^d - n^d) / 2
//
// Each canonical direction contributes n choices along axes it does not
// move on and n-w+1 along axes it does.
func Count(dimension, size, winLength int) int {
	span := size - winLength + 1
	if span <= 0 {
		return 0
	}
	return (pow(size+2*span, dimension) - pow(size, dimension)) / 2
}

func pow(base, exp int) int {
	out := 1
	for range exp {
		out *= base
	}
	return out
}
