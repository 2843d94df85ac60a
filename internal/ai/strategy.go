// Package ai picks moves for computer-controlled players.
//
// Choose is a pure function of its Input: the same claims, players and
// preference order always produce the same cell. That property is what lets
// networked peers compute AI moves locally instead of broadcasting them.
package ai

import (
	"math/rand/v2"

	"github.com/roach88/hypertoe/internal/claim"
	"github.com/roach88/hypertoe/internal/combo"
)

// Rule identifies which step of the cascade produced a choice.
type Rule uint8

const (
	RuleWin Rule = iota + 1
	RuleBlock
	RuleBlockThreat
	RulePreferred
	RuleFallback
)

func (r Rule) String() string {
	switch r {
	case RuleWin:
		return "win"
	case RuleBlock:
		return "block"
	case RuleBlockThreat:
		return "block-threat"
	case RulePreferred:
		return "preferred"
	case RuleFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Input is everything the strategy is allowed to look at.
type Input struct {
	// Combinations are the active (not yet scored) win combinations in
	// generation order.
	Combinations []combo.Combination
	// Claims reads the claim state of a cell.
	Claims func(cell int) claim.State
	// Cells is the board cell count.
	Cells int
	// Current is the player to move; Previous moved last.
	Current  int
	Previous int
	// LastClaimed is the most recently claimed cell, -1 if none.
	LastClaimed int
	// Preferences is the shared shuffled cell order.
	Preferences []int
}

// Choice is the cell the strategy wants to claim.
type Choice struct {
	Cell int
	Rule Rule
}

type tally struct {
	current   int
	previous  int
	unclaimed []int
}

func count(in Input, c combo.Combination) tally {
	var t tally
	for _, cell := range c {
		st := in.Claims(cell)
		switch {
		case st.Kind == claim.Unclaimed:
			t.unclaimed = append(t.unclaimed, cell)
		case st.IsClaimedBy(in.Current):
			t.current++
		case st.IsClaimedBy(in.Previous):
			t.previous++
		}
	}
	return t
}

// Choose runs the priority cascade. It returns false only when no cell is
// unclaimed.
func Choose(in Input) (Choice, bool) {
	tallies := make([]tally, len(in.Combinations))
	for i, c := range in.Combinations {
		tallies[i] = count(in, c)
	}

	for i, c := range in.Combinations {
		t := tallies[i]
		if t.current == len(c)-1 && t.previous == 0 && len(t.unclaimed) > 0 {
			return Choice{Cell: t.unclaimed[0], Rule: RuleWin}, true
		}
	}

	for i, c := range in.Combinations {
		t := tallies[i]
		if t.previous == len(c)-1 && t.current == 0 && len(t.unclaimed) > 0 {
			return Choice{Cell: t.unclaimed[0], Rule: RuleBlock}, true
		}
	}

	for i, c := range in.Combinations {
		t := tallies[i]
		if t.previous != len(c)-2 || t.current != 0 || len(t.unclaimed) == 0 {
			continue
		}
		best := t.unclaimed[0]
		for _, cell := range t.unclaimed[1:] {
			if distance(cell, in.LastClaimed) < distance(best, in.LastClaimed) {
				best = cell
			}
		}
		return Choice{Cell: best, Rule: RuleBlockThreat}, true
	}

	for _, cell := range in.Preferences {
		if in.Claims(cell).Kind == claim.Unclaimed {
			return Choice{Cell: cell, Rule: RulePreferred}, true
		}
	}

	for cell := 0; cell < in.Cells; cell++ {
		if in.Claims(cell).Kind == claim.Unclaimed {
			return Choice{Cell: cell, Rule: RuleFallback}, true
		}
	}
	return Choice{}, false
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// Shuffle returns a uniformly random permutation of 0..cells-1.
func Shuffle(rng *rand.Rand, cells int) []int {
	order := make([]int, cells)
	for i := range order {
		order[i] = i
	}
	for i := cells - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// ValidPermutation reports whether order is a permutation of 0..cells-1.
func ValidPermutation(order []int, cells int) bool {
	if len(order) != cells {
		return false
	}
	seen := make([]bool, cells)
	for _, v := range order {
		if v < 0 || v >= cells || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
