package game

import (
	"time"

	"github.com/roach88/hypertoe/internal/ai"
	"github.com/roach88/hypertoe/internal/board"
)

// Configuration setters clamp their argument and report whether anything
// changed. Setting a field to its current value is a no-op, which makes
// re-applying a peer's snapshot idempotent.
//
// Structural fields (players, dimension, board size, win length, dead
// cells) start a new match. The others take effect immediately.

// SetDimension switches between 2D and 3D.
func (e *Engine) SetDimension(d int) bool {
	next := e.cfg
	next.Dimension = d
	return e.restructure(next)
}

// SetBoardSize changes the side length. The win length follows the new
// size.
func (e *Engine) SetBoardSize(n int) bool {
	if clamp(n, board.MinSize, board.MaxSize) == e.cfg.BoardSize {
		return false
	}
	next := e.cfg
	next.BoardSize = n
	next.WinLength = n
	return e.restructure(next)
}

// SetWinLength changes how many cells make a line.
func (e *Engine) SetWinLength(w int) bool {
	next := e.cfg
	next.WinLength = w
	return e.restructure(next)
}

// SetPlayerCount changes the number of seats.
func (e *Engine) SetPlayerCount(p int) bool {
	next := e.cfg
	next.PlayerCount = p
	return e.restructure(next)
}

// SetDeadCellCount changes how many cells are dead each round.
func (e *Engine) SetDeadCellCount(count int) bool {
	next := e.cfg
	next.DeadCells = count
	return e.restructure(next)
}

// restructure clamps next and starts a new match if any structural field
// differs from the current configuration.
func (e *Engine) restructure(next Config) bool {
	next = next.Clamp()
	if !e.cfg.structural(next) {
		return false
	}
	e.cfg.PlayerCount = next.PlayerCount
	e.cfg.Dimension = next.Dimension
	e.cfg.BoardSize = next.BoardSize
	e.cfg.WinLength = next.WinLength
	e.cfg.DeadCells = next.DeadCells
	e.emit(Event{Kind: EventConfigChanged, Source: SourceHuman, Config: e.cfg})
	e.startMatch(SourceHuman)
	return true
}

// SetGoalScore sets the number of lines that wins a round in ScoreGoal
// mode.
func (e *Engine) SetGoalScore(goal int) bool {
	goal = clamp(goal, MinGoalScore, MaxGoalScore)
	if goal == e.cfg.Score.Goal {
		return false
	}
	e.cfg.Score.Goal = goal
	e.configChanged()
	return true
}

// SetScoreMode switches between goal and highest-score rounds. Unknown
// modes are ignored.
func (e *Engine) SetScoreMode(mode ScoreMode) bool {
	if _, err := ParseScoreMode(string(mode)); err != nil || mode == e.cfg.Score.Mode {
		return false
	}
	e.cfg.Score.Mode = mode
	e.configChanged()
	return true
}

// SetCountdown enables or disables the per-turn timer. A running turn gets
// a fresh countdown.
func (e *Engine) SetCountdown(enabled bool, seconds int) bool {
	cd := CountdownConfig{Enabled: enabled, Seconds: clamp(seconds, MinCountdownSeconds, MaxCountdownSeconds)}
	if cd == e.cfg.Countdown {
		return false
	}
	e.cfg.Countdown = cd
	if e.phase == PhaseAwaitingMove {
		e.beginTurn(true)
	}
	e.configChanged()
	return true
}

// SetBlindMode changes the blind modifier and restarts its cycle.
func (e *Engine) SetBlindMode(mode BlindMode, interval, reveal time.Duration) bool {
	b := BlindConfig{Mode: mode, Interval: interval, Reveal: reveal}.clamp()
	if b == e.cfg.Blind {
		return false
	}
	e.cfg.Blind = b
	e.configChanged()
	e.startBlind()
	return true
}

// SetAIDelay sets how long AI players wait before moving.
func (e *Engine) SetAIDelay(d time.Duration) bool {
	d = clamp(d, 0, MaxAIDelay)
	if d == e.cfg.AIDelay {
		return false
	}
	e.cfg.AIDelay = d
	e.configChanged()
	return true
}

func (e *Engine) configChanged() {
	e.emit(Event{Kind: EventConfigChanged, Source: SourceHuman, Config: e.cfg})
}

// Apply brings the engine to cfg in a fixed order: structural fields first
// (as one new match), then score mode, goal, countdown, blind and AI delay.
// Fields already equal to the local value are skipped.
func (e *Engine) Apply(cfg Config) bool {
	changed := e.restructure(cfg)
	changed = e.SetScoreMode(cfg.Score.Mode) || changed
	changed = e.SetGoalScore(cfg.Score.Goal) || changed
	changed = e.SetCountdown(cfg.Countdown.Enabled, cfg.Countdown.Seconds) || changed
	changed = e.SetBlindMode(cfg.Blind.Mode, cfg.Blind.Interval, cfg.Blind.Reveal) || changed
	changed = e.SetAIDelay(cfg.AIDelay) || changed
	return changed
}

// SetPlayerAI hands a seat to or takes it from the computer. Making the
// player to move an AI schedules its move.
func (e *Engine) SetPlayerAI(id int, isAI bool) bool {
	if id < 0 || id >= len(e.players) || e.players[id].IsAI == isAI {
		return false
	}
	e.players[id].IsAI = isAI
	e.emit(Event{Kind: EventPlayerChanged, Source: SourceHuman, Player: id, Seat: e.players[id]})
	if id == e.currentTurn && e.phase == PhaseAwaitingMove {
		e.stopTurnTimers()
		e.token++
		e.armCountdown()
		if isAI {
			e.armAI()
		}
	}
	return true
}

// SetPlayerColor recolours a seat.
func (e *Engine) SetPlayerColor(id int, c Color) bool {
	if id < 0 || id >= len(e.players) || e.players[id].Color == c {
		return false
	}
	e.players[id].Color = c
	e.emit(Event{Kind: EventPlayerChanged, Source: SourceHuman, Player: id, Seat: e.players[id]})
	return true
}

// SetPreferences replaces the AI preference order, typically with a peer's.
// It returns false if order is not a permutation of the board's cells.
func (e *Engine) SetPreferences(order []int) bool {
	if !ai.ValidPermutation(order, e.board.Cells()) {
		return false
	}
	e.prefs = append(e.prefs[:0], order...)
	e.emit(Event{Kind: EventPreferencesChanged, Source: SourceHuman, Preferences: append([]int(nil), order...)})
	return true
}

// MaxDeadCells is the dead-cell limit for the current board.
func (e *Engine) MaxDeadCells() int {
	return board.MaxDeadCells(e.board)
}
