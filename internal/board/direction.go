package board

// Direction is a step vector with every component in {-1, 0, 1}.
type Direction []int

// IsZero reports whether every component is zero.
func (d Direction) IsZero() bool {
	for _, c := range d {
		if c != 0 {
			return false
		}
	}
	return true
}

// Reverse returns -d.
func (d Direction) Reverse() Direction {
	r := make(Direction, len(d))
	for i, c := range d {
		r[i] = -c
	}
	return r
}

// canonical reports whether d is the representative of the {d, -d} pair:
// its first non-zero component is +1.
func (d Direction) canonical() bool {
	for _, c := range d {
		if c != 0 {
			return c > 0
		}
	}
	return false
}

// Directions returns the canonical direction set for the board: every
// vector in {-1,0,1}^d except zero, keeping one of each {v, -v} pair.
// That is (3^d - 1) / 2 directions: 4 for 2D and 13 for 3D.
//
// The order is fixed (lexicographic over components -1, 0, 1) so that
// anything derived from it is deterministic.
func (b Board) Directions() []Direction {
	total := 1
	for range b.dimension {
		total *= 3
	}
	dirs := make([]Direction, 0, (total-1)/2)
	for n := range total {
		d := make(Direction, b.dimension)
		v := n
		for axis := b.dimension - 1; axis >= 0; axis-- {
			d[axis] = v%3 - 1
			v /= 3
		}
		if d.IsZero() || !d.canonical() {
			continue
		}
		dirs = append(dirs, d)
	}
	return dirs
}

// Step moves one cell from index along dir. The second result is false
// when the step would leave the board; lines never wrap.
func (b Board) Step(index int, dir Direction) (int, bool) {
	if !b.Valid(index) || len(dir) != b.dimension {
		return -1, false
	}
	coords := b.Coords(index)
	for axis, c := range dir {
		coords[axis] += c
	}
	if !b.InBounds(coords) {
		return -1, false
	}
	return b.Index(coords), true
}

// NeighborsAlongDirection returns the in-bounds run of cells that starts at
// index and steps along dir, holding at most steps cells. The walk stops at
// the first out-of-bounds coordinate. An invalid start or a zero direction
// yields an empty run.
func (b Board) NeighborsAlongDirection(index int, dir Direction, steps int) []int {
	if !b.Valid(index) || steps <= 0 || len(dir) != b.dimension || dir.IsZero() {
		return nil
	}

	run := make([]int, 0, min(steps, b.size))
	coords := b.Coords(index)
	for len(run) < steps {
		if !b.InBounds(coords) {
			break
		}
		run = append(run, b.Index(coords))
		for axis, c := range dir {
			coords[axis] += c
		}
	}
	return run
}

// RunStart reports whether index begins a maximal run along dir, i.e. the
// previous cell (one step along -dir) is off the board.
func (b Board) RunStart(index int, dir Direction) bool {
	_, ok := b.Step(index, dir.Reverse())
	return !ok
}
