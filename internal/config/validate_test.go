package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/hypertoe/internal/game"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		codes  []string
	}{
		{"defaults", func(*Settings) {}, nil},
		{"win length", func(s *Settings) { s.Game.WinLength = 4 }, []string{ErrWinLengthTooLong}},
		{"dead cells", func(s *Settings) { s.Game.DeadCells = 2 }, []string{ErrTooManyDeadCells}},
		{"dead cells on a cube", func(s *Settings) {
			s.Game.Dimension = 3
			s.Game.DeadCells = 5
		}, nil},
		{"ai seat", func(s *Settings) { s.AIPlayers = []int{0, 2} }, []string{ErrAIPlayerRange}},
		{"reveal", func(s *Settings) {
			s.Game.Blind = game.BlindConfig{Mode: game.BlindAllPlayers, Interval: 2 * time.Second, Reveal: 1500 * time.Millisecond}
		}, []string{ErrRevealTooLong}},
		{"modes", func(s *Settings) {
			s.Game.Score.Mode = "fastest"
			s.Game.Blind.Mode = "sometimes"
		}, []string{ErrUnknownMode, ErrUnknownMode}},
		{"dimension", func(s *Settings) { s.Game.Dimension = 5 }, []string{ErrOutOfRange}},
		{"players", func(s *Settings) { s.Game.PlayerCount = 1 }, []string{ErrOutOfRange}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)

			var codes []string
			for _, e := range Validate(s) {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "winLength", Message: "too long", Code: ErrWinLengthTooLong}
	assert.Equal(t, "[E201] winLength: too long", err.Error())
}
