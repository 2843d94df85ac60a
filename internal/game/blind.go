package game

import "github.com/roach88/hypertoe/internal/claim"

// Blind mode hides claim owners. Every Interval the owners are revealed for
// Reveal, then hidden again. The cycle runs independently of turns and
// rounds; changing the blind settings restarts it hidden.

// VisibleCellState is CellState as a player should see it: while hidden,
// claims by affected players read as Claimed with Player -1.
func (e *Engine) VisibleCellState(i int) claim.State {
	st := e.claims.Get(i)
	if st.Kind == claim.Claimed && e.hidden && e.blindAffects(st.Player) {
		return claim.State{Kind: claim.Claimed, Player: -1}
	}
	return st
}

// BlindHidden reports whether owners are currently hidden.
func (e *Engine) BlindHidden() bool { return e.hidden }

func (e *Engine) blindAffects(player int) bool {
	if player < 0 || player >= len(e.players) {
		return false
	}
	switch e.cfg.Blind.Mode {
	case BlindAllPlayers:
		return true
	case BlindAIPlayers:
		return e.players[player].IsAI
	case BlindHumanPlayers:
		return !e.players[player].IsAI
	default:
		return false
	}
}

func (e *Engine) startBlind() {
	if e.blindStop != nil {
		e.blindStop()
		e.blindStop = nil
	}
	e.blindGen++
	e.setHidden(e.cfg.Blind.Mode != BlindDisabled)
	if e.hidden {
		e.armReveal(e.blindGen)
	}
}

func (e *Engine) armReveal(gen uint64) {
	e.blindStop = e.sched.AfterFunc(e.cfg.Blind.Interval, func() {
		if gen != e.blindGen {
			return
		}
		e.setHidden(false)
		e.blindStop = e.sched.AfterFunc(e.cfg.Blind.Reveal, func() {
			if gen != e.blindGen {
				return
			}
			e.setHidden(true)
			e.armReveal(gen)
		})
	})
}

func (e *Engine) setHidden(hidden bool) {
	if e.hidden == hidden {
		return
	}
	e.hidden = hidden
	e.emit(Event{Kind: EventBlindChanged, Source: SourceTimer, Hidden: hidden})
}
