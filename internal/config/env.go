package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/hypertoe/internal/game"
)

// overrides are the environment variables. Unset variables leave the
// pointer nil and the setting untouched.
type overrides struct {
	Players    *int           `env:"HYPERTOE_PLAYERS"`
	Dimension  *int           `env:"HYPERTOE_DIMENSION"`
	BoardSize  *int           `env:"HYPERTOE_BOARD_SIZE"`
	WinLength  *int           `env:"HYPERTOE_WIN_LENGTH"`
	DeadCells  *int           `env:"HYPERTOE_DEAD_CELLS"`
	AIDelay    *time.Duration `env:"HYPERTOE_AI_DELAY"`
	AIPlayers  []int          `env:"HYPERTOE_AI_PLAYERS" envSeparator:","`
	ScoreMode  *string        `env:"HYPERTOE_SCORE_MODE"`
	GoalScore  *int           `env:"HYPERTOE_GOAL_SCORE"`
	ResetDelay *time.Duration `env:"HYPERTOE_RESET_DELAY"`
	Database   *string        `env:"HYPERTOE_DB"`
	RelayURL   *string        `env:"HYPERTOE_RELAY_URL"`
	Room       *string        `env:"HYPERTOE_ROOM"`
}

// ApplyEnv overrides s with HYPERTOE_* variables from the process
// environment.
func ApplyEnv(s Settings) (Settings, error) {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return o.apply(s), nil
}

// ApplyEnvFrom is ApplyEnv reading from vars instead of the process.
func ApplyEnvFrom(s Settings, vars map[string]string) (Settings, error) {
	var o overrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: vars}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return o.apply(s), nil
}

func (o overrides) apply(s Settings) Settings {
	setInt(&s.Game.PlayerCount, o.Players)
	setInt(&s.Game.Dimension, o.Dimension)
	setInt(&s.Game.BoardSize, o.BoardSize)
	setInt(&s.Game.WinLength, o.WinLength)
	setInt(&s.Game.DeadCells, o.DeadCells)
	setInt(&s.Game.Score.Goal, o.GoalScore)
	if o.AIDelay != nil {
		s.Game.AIDelay = *o.AIDelay
	}
	if o.ResetDelay != nil {
		s.ResetDelay = *o.ResetDelay
	}
	if o.ScoreMode != nil {
		s.Game.Score.Mode = game.ScoreMode(*o.ScoreMode)
	}
	if o.AIPlayers != nil {
		s.AIPlayers = o.AIPlayers
	}
	if o.Database != nil {
		s.Database = *o.Database
	}
	if o.RelayURL != nil {
		s.RelayURL = *o.RelayURL
	}
	if o.Room != nil {
		s.Room = *o.Room
	}
	return s
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
