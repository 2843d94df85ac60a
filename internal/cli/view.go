package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/hypertoe/internal/board"
	"github.com/roach88/hypertoe/internal/claim"
	"github.com/roach88/hypertoe/internal/game"
)

// playerMarks are the board symbols, one per seat.
const playerMarks = "XOABCDEFGH"

func playerMark(p int) byte {
	if p < 0 || p >= len(playerMarks) {
		return '?'
	}
	return playerMarks[p]
}

func cellMark(st claim.State) byte {
	switch st.Kind {
	case claim.Dead:
		return '#'
	case claim.Claimed:
		return playerMark(st.Player)
	default:
		return '.'
	}
}

// renderBoard prints the board as the current player sees it: hidden
// owners read '?', scored lines are bracketed. 3D boards print one layer
// after another.
func renderBoard(w io.Writer, g *game.Engine) {
	b := g.Board()
	n := b.Size()
	layers := 1
	if b.Dimension() == 3 {
		layers = n
	}

	for z := range layers {
		if layers > 1 {
			fmt.Fprintf(w, "layer %d\n", z)
		}
		fmt.Fprint(w, "   ")
		for x := range n {
			fmt.Fprintf(w, "%3d", x)
		}
		fmt.Fprintln(w)
		for y := range n {
			fmt.Fprintf(w, "%3d", y)
			for x := range n {
				i := b.Index([]int{x, y, z})
				mark := cellMark(g.VisibleCellState(i))
				if g.Highlighted(i) {
					fmt.Fprintf(w, "[%c]", mark)
				} else {
					fmt.Fprintf(w, " %c ", mark)
				}
			}
			fmt.Fprintln(w)
		}
	}
}

// renderStatus prints round, scores and whose turn it is.
func renderStatus(w io.Writer, g *game.Engine) {
	r := g.Round()
	scores := make([]string, 0, len(g.Players()))
	for _, p := range g.Players() {
		s := fmt.Sprintf("%c=%d", playerMark(p.ID), p.Score)
		if p.IsAI {
			s += "(ai)"
		}
		scores = append(scores, s)
	}
	fmt.Fprintf(w, "round %d  turn %d  %s\n", r.Number, r.TurnCount, strings.Join(scores, " "))
}

// parseCell reads a cell as a linear index ("4") or as coordinates
// ("1,1" or "1,1,2").
func parseCell(b board.Board, s string) (int, error) {
	if !strings.Contains(s, ",") {
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("not a cell: %q", s)
		}
		if !b.Valid(i) {
			return 0, fmt.Errorf("cell %d is off the %s board", i, b)
		}
		return i, nil
	}

	parts := strings.Split(s, ",")
	coords := make([]int, len(parts))
	for i, p := range parts {
		c, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("not a coordinate: %q", p)
		}
		coords[i] = c
	}
	if !b.InBounds(coords) {
		return 0, fmt.Errorf("%s is off the %s board", s, b)
	}
	return b.Index(coords), nil
}

func formatCoords(b board.Board, i int) string {
	coords := b.Coords(i)
	parts := make([]string, len(coords))
	for j, c := range coords {
		parts[j] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}
