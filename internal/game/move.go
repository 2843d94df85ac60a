package game

import (
	"slices"

	"github.com/roach88/hypertoe/internal/claim"
)

// RejectReason explains why a move was not applied.
type RejectReason uint8

const (
	RejectNone RejectReason = iota
	// RejectBusy: the engine is not awaiting a move.
	RejectBusy
	RejectOutOfRange
	RejectWrongTurn
	// RejectNotClaimable: the cell is dead or already claimed.
	RejectNotClaimable
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectBusy:
		return "busy"
	case RejectOutOfRange:
		return "out_of_range"
	case RejectWrongTurn:
		return "wrong_turn"
	case RejectNotClaimable:
		return "not_claimable"
	default:
		return "unknown"
	}
}

// OutcomeKind is the result of evaluating a move or pass.
type OutcomeKind uint8

const (
	// OutcomeContinue: play passed to Outcome.Next.
	OutcomeContinue OutcomeKind = iota
	OutcomeWin
	OutcomeDraw
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinue:
		return "continue"
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Outcome describes what an accepted move or pass led to.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	// Winner is the winning player, -1 unless Kind is OutcomeWin.
	Winner int `json:"winner"`
	// Next is the player to move, -1 unless Kind is OutcomeContinue.
	Next int `json:"next"`
	// Scored is true when the move completed a line.
	Scored bool `json:"scored"`
}

// MoveResult is returned by SubmitMove. Rejections are routine (a click on
// a taken cell) and never reported as errors.
type MoveResult struct {
	Accepted bool
	Reason   RejectReason
	Outcome  Outcome
}

// SubmitMove claims cell for player if it is player's turn and the cell is
// unclaimed.
func (e *Engine) SubmitMove(cell, player int) MoveResult {
	return e.submit(cell, player, SourceHuman)
}

func (e *Engine) submit(cell, player int, src Source) MoveResult {
	var reason RejectReason
	switch {
	case e.phase != PhaseAwaitingMove:
		reason = RejectBusy
	case !e.board.Valid(cell):
		reason = RejectOutOfRange
	case player != e.currentTurn:
		reason = RejectWrongTurn
	case e.claims.Get(cell).Kind != claim.Unclaimed:
		reason = RejectNotClaimable
	}
	if reason != RejectNone {
		e.logger.Debug("move rejected", "cell", cell, "player", player, "reason", reason.String())
		return MoveResult{Reason: reason}
	}

	e.claims.Claim(cell, player)
	e.turnCount++
	e.lastClaimed = cell
	e.pristine = false
	e.phase = PhaseEvaluating

	e.emit(Event{Kind: EventMoveApplied, Source: src, Player: player, Cell: cell, TurnCount: e.turnCount})
	return MoveResult{Accepted: true, Outcome: e.evaluate(player, src)}
}

// ForcePass ends the current turn without a claim, as when the countdown
// expires. It reports false if the engine is not awaiting a move.
func (e *Engine) ForcePass() (Outcome, bool) {
	if e.phase != PhaseAwaitingMove {
		return Outcome{}, false
	}
	return e.pass(SourceHuman), true
}

func (e *Engine) pass(src Source) Outcome {
	player := e.currentTurn
	e.pristine = false
	e.phase = PhaseEvaluating
	e.emit(Event{Kind: EventTurnPassed, Source: src, Player: player, TurnCount: e.turnCount})
	return e.evaluate(player, src)
}

// evaluate scores at most one line for mover, then ends the round or hands
// the turn on.
func (e *Engine) evaluate(mover int, src Source) Outcome {
	scored := e.scoreLine(mover, src)

	if e.cfg.Score.Mode == ScoreGoal && scored && e.players[mover].Score >= e.cfg.Score.Goal {
		return e.endRound(Outcome{Kind: OutcomeWin, Winner: mover, Next: -1, Scored: true}, src)
	}
	if e.turnCount >= e.playableCells() {
		out := Outcome{Kind: OutcomeDraw, Winner: -1, Next: -1, Scored: scored}
		if e.cfg.Score.Mode == ScoreHighest {
			if leader := e.leader(); leader >= 0 {
				out.Kind, out.Winner = OutcomeWin, leader
			}
		}
		return e.endRound(out, src)
	}

	e.currentTurn = e.nextPlayer(mover)
	next := e.currentTurn
	e.beginTurn(false)
	return Outcome{Kind: OutcomeContinue, Winner: -1, Next: next, Scored: scored}
}

// scoreLine moves the first active combination fully owned by player to
// the claimed list.
func (e *Engine) scoreLine(player int, src Source) bool {
	for i, c := range e.active {
		if !e.ownsAll(c, player) {
			continue
		}
		e.active = slices.Delete(e.active, i, i+1)
		e.claimed = append(e.claimed, c)
		for _, cell := range c {
			e.claims.Highlight(cell)
		}
		e.players[player].Score++
		e.pristine = false
		e.emit(Event{
			Kind:        EventScored,
			Source:      src,
			Player:      player,
			Combination: slices.Clone(c),
			Score:       e.players[player].Score,
		})
		return true
	}
	return false
}

func (e *Engine) ownsAll(c []int, player int) bool {
	for _, cell := range c {
		if !e.claims.Get(cell).IsClaimedBy(player) {
			return false
		}
	}
	return true
}

// leader returns the player with the strictly highest positive score, or
// -1 on a tie or when nobody scored.
func (e *Engine) leader() int {
	best, leader := 0, -1
	for _, p := range e.players {
		switch {
		case p.Score > best:
			best, leader = p.Score, p.ID
		case p.Score == best && best > 0:
			leader = -1
		}
	}
	return leader
}

func (e *Engine) endRound(out Outcome, src Source) Outcome {
	e.stopTurnTimers()
	e.token++
	e.phase = PhaseRoundOver

	e.logger.Debug("round over", "round", e.round, "outcome", out.Kind.String(), "winner", out.Winner, "turns", e.turnCount)
	e.emit(Event{Kind: EventRoundOver, Source: src, Player: e.currentTurn, Outcome: out, TurnCount: e.turnCount})

	if e.resetDelay == 0 {
		e.resetRound(SourceSystem)
		return out
	}
	tok := e.token
	e.resetStop = e.sched.AfterFunc(e.resetDelay, func() {
		if tok != e.token || e.phase != PhaseRoundOver {
			return
		}
		e.resetRound(SourceTimer)
	})
	return out
}
