package config

import (
	"fmt"
	"time"

	"github.com/roach88/hypertoe/internal/board"
	"github.com/roach88/hypertoe/internal/game"
)

// Validation error codes (E200-E299)
const (
	ErrWinLengthTooLong = "E201" // win length exceeds board size
	ErrTooManyDeadCells = "E202" // dead cells exceed floor(cells/5)
	ErrAIPlayerRange    = "E203" // AI seat outside the player count
	ErrRevealTooLong    = "E204" // reveal does not end before the next one
	ErrUnknownMode      = "E205" // score or blind mode name
	ErrOutOfRange       = "E206" // value outside its setter range
)

// ValidationError is a cross-field settings error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the rules the schema cannot express. The engine would
// clamp these values silently; a settings file should say what it means.
// Returns all errors found (does not fail-fast).
func Validate(s Settings) []ValidationError {
	var errs []ValidationError
	g := s.Game

	if g.Dimension != 2 && g.Dimension != 3 {
		errs = append(errs, ValidationError{
			Field:   "dimension",
			Message: fmt.Sprintf("dimension %d is not 2 or 3", g.Dimension),
			Code:    ErrOutOfRange,
		})
		return errs
	}
	if g.BoardSize < 3 || g.BoardSize > 30 {
		errs = append(errs, ValidationError{
			Field:   "boardSize",
			Message: fmt.Sprintf("board size %d is outside [3, 30]", g.BoardSize),
			Code:    ErrOutOfRange,
		})
		return errs
	}
	if g.PlayerCount < game.MinPlayers || g.PlayerCount > game.MaxPlayers {
		errs = append(errs, ValidationError{
			Field:   "players",
			Message: fmt.Sprintf("player count %d is outside [%d, %d]", g.PlayerCount, game.MinPlayers, game.MaxPlayers),
			Code:    ErrOutOfRange,
		})
	}

	if g.WinLength > g.BoardSize {
		errs = append(errs, ValidationError{
			Field:   "winLength",
			Message: fmt.Sprintf("win length %d exceeds board size %d", g.WinLength, g.BoardSize),
			Code:    ErrWinLengthTooLong,
		})
	}

	b := board.MustNew(g.Dimension, g.BoardSize)
	if limit := board.MaxDeadCells(b); g.DeadCells > limit {
		errs = append(errs, ValidationError{
			Field:   "deadCells",
			Message: fmt.Sprintf("%d dead cells on a %s board, at most %d allowed", g.DeadCells, b, limit),
			Code:    ErrTooManyDeadCells,
		})
	}

	for i, seat := range s.AIPlayers {
		if seat < 0 || seat >= g.PlayerCount {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("aiPlayers[%d]", i),
				Message: fmt.Sprintf("seat %d does not exist with %d players", seat, g.PlayerCount),
				Code:    ErrAIPlayerRange,
			})
		}
	}

	if _, err := game.ParseScoreMode(string(g.Score.Mode)); err != nil {
		errs = append(errs, ValidationError{Field: "score.mode", Message: err.Error(), Code: ErrUnknownMode})
	}
	if _, err := game.ParseBlindMode(string(g.Blind.Mode)); err != nil {
		errs = append(errs, ValidationError{Field: "blind.mode", Message: err.Error(), Code: ErrUnknownMode})
	}
	if g.Blind.Mode != game.BlindDisabled && g.Blind.Reveal > g.Blind.Interval-time.Second {
		errs = append(errs, ValidationError{
			Field:   "blind.revealMs",
			Message: fmt.Sprintf("reveal %s must end a second before the next one (interval %s)", g.Blind.Reveal, g.Blind.Interval),
			Code:    ErrRevealTooLong,
		})
	}

	return errs
}
