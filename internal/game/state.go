package game

import (
	"slices"

	"github.com/roach88/hypertoe/internal/board"
	"github.com/roach88/hypertoe/internal/claim"
	"github.com/roach88/hypertoe/internal/combo"
)

// Read-only queries. Slices are copies.

// CellState returns the true claim state of cell i.
func (e *Engine) CellState(i int) claim.State {
	return e.claims.Get(i)
}

// Highlighted reports whether cell i belongs to a scored line.
func (e *Engine) Highlighted(i int) bool {
	return e.claims.Highlighted(i)
}

// HoverPreview reports whether cell i could be claimed right now.
func (e *Engine) HoverPreview(i int) bool {
	return e.phase == PhaseAwaitingMove && e.claims.Get(i).Kind == claim.Unclaimed
}

// ActiveCombinations returns the lines that can still score this round.
func (e *Engine) ActiveCombinations() []combo.Combination {
	return cloneCombos(e.active)
}

// ClaimedCombinations returns the lines scored this round, in order.
func (e *Engine) ClaimedCombinations() []combo.Combination {
	return cloneCombos(e.claimed)
}

func cloneCombos(in []combo.Combination) []combo.Combination {
	out := make([]combo.Combination, len(in))
	for i, c := range in {
		out[i] = slices.Clone(c)
	}
	return out
}

// Scores returns each player's line count for this round.
func (e *Engine) Scores() []int {
	scores := make([]int, len(e.players))
	for i, p := range e.players {
		scores[i] = p.Score
	}
	return scores
}

// Players returns the seats.
func (e *Engine) Players() []Player {
	return slices.Clone(e.players)
}

// Round returns a snapshot of the current round.
func (e *Engine) Round() Round {
	return Round{
		Number:      e.round,
		CurrentTurn: e.currentTurn,
		TurnCount:   e.turnCount,
		LastClaimed: e.lastClaimed,
		DeadCells:   slices.Clone(e.deadCells),
		Claimed:     cloneCombos(e.claimed),
	}
}

// Config returns the current configuration.
func (e *Engine) Config() Config { return e.cfg }

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Preferences returns the AI preference order.
func (e *Engine) Preferences() []int { return slices.Clone(e.prefs) }

// Board returns the current board geometry.
func (e *Engine) Board() board.Board { return e.board }

// MatchSeed returns the seed of the current match.
func (e *Engine) MatchSeed() uint64 { return e.seed }
