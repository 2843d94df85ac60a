package game

import (
	"fmt"
	"time"

	"github.com/roach88/hypertoe/internal/board"
)

// ScoreMode decides when a round is won.
type ScoreMode string

const (
	// ScoreGoal ends the round as soon as a player's line count reaches the
	// goal.
	ScoreGoal ScoreMode = "goal"
	// ScoreHighest plays until the board is full; the most lines wins.
	ScoreHighest ScoreMode = "highest"
)

// BlindMode selects whose claims are hidden between reveals.
type BlindMode string

const (
	BlindDisabled     BlindMode = "disabled"
	BlindAllPlayers   BlindMode = "all"
	BlindAIPlayers    BlindMode = "ai"
	BlindHumanPlayers BlindMode = "human"
)

// ParseScoreMode validates a score mode name.
func ParseScoreMode(s string) (ScoreMode, error) {
	switch m := ScoreMode(s); m {
	case ScoreGoal, ScoreHighest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown score mode %q", s)
	}
}

// ParseBlindMode validates a blind mode name.
func ParseBlindMode(s string) (BlindMode, error) {
	switch m := BlindMode(s); m {
	case BlindDisabled, BlindAllPlayers, BlindAIPlayers, BlindHumanPlayers:
		return m, nil
	default:
		return "", fmt.Errorf("unknown blind mode %q", s)
	}
}

// Limits applied by the setters. Values outside are clamped, never
// rejected.
const (
	MinPlayers = 2
	MaxPlayers = 10

	MinWinLength = 3

	MinGoalScore = 1
	MaxGoalScore = 1000

	MinCountdownSeconds = 1
	MaxCountdownSeconds = 60

	MaxAIDelay = 2 * time.Second

	MinBlindInterval = 1100 * time.Millisecond
	MaxBlindInterval = 60 * time.Second
	MinBlindReveal   = 100 * time.Millisecond
	// The reveal always ends at least this long before the next one.
	blindRevealGap = time.Second
)

// BlindConfig controls the hide/reveal cycle.
type BlindConfig struct {
	Mode     BlindMode     `json:"mode"`
	Interval time.Duration `json:"interval"`
	Reveal   time.Duration `json:"reveal"`
}

// CountdownConfig controls the per-turn timer.
type CountdownConfig struct {
	Enabled bool `json:"enabled"`
	Seconds int  `json:"seconds"`
}

// ScoreConfig controls multi-line scoring.
type ScoreConfig struct {
	Mode ScoreMode `json:"mode"`
	Goal int       `json:"goal"`
}

// Config is the full shared game configuration. Peers exchange it whole and
// apply it field by field.
type Config struct {
	PlayerCount int             `json:"playerCount"`
	Dimension   int             `json:"dimension"`
	BoardSize   int             `json:"boardSize"`
	WinLength   int             `json:"winLength"`
	DeadCells   int             `json:"deadCells"`
	AIDelay     time.Duration   `json:"aiDelay"`
	Blind       BlindConfig     `json:"blind"`
	Countdown   CountdownConfig `json:"countdown"`
	Score       ScoreConfig     `json:"score"`
}

// DefaultConfig is the classic two-player 3x3 game.
func DefaultConfig() Config {
	return Config{
		PlayerCount: 2,
		Dimension:   2,
		BoardSize:   3,
		WinLength:   3,
		AIDelay:     MaxAIDelay,
		Blind: BlindConfig{
			Mode:     BlindDisabled,
			Interval: 4 * time.Second,
			Reveal:   MinBlindReveal,
		},
		Countdown: CountdownConfig{Enabled: false, Seconds: MaxCountdownSeconds},
		Score:     ScoreConfig{Mode: ScoreGoal, Goal: 1},
	}
}

// Clamp returns c with every field forced into its valid range. Unknown
// modes fall back to the defaults.
func (c Config) Clamp() Config {
	c.PlayerCount = clamp(c.PlayerCount, MinPlayers, MaxPlayers)
	c.Dimension = clamp(c.Dimension, board.MinDimension, board.MaxDimension)
	c.BoardSize = clamp(c.BoardSize, board.MinSize, board.MaxSize)
	c.WinLength = clamp(c.WinLength, MinWinLength, c.BoardSize)
	c.DeadCells = board.ClampDeadCells(board.MustNew(c.Dimension, c.BoardSize), c.DeadCells)
	c.AIDelay = clamp(c.AIDelay, 0, MaxAIDelay)
	c.Blind = c.Blind.clamp()
	c.Countdown.Seconds = clamp(c.Countdown.Seconds, MinCountdownSeconds, MaxCountdownSeconds)
	if _, err := ParseScoreMode(string(c.Score.Mode)); err != nil {
		c.Score.Mode = ScoreGoal
	}
	c.Score.Goal = clamp(c.Score.Goal, MinGoalScore, MaxGoalScore)
	return c
}

func (b BlindConfig) clamp() BlindConfig {
	if _, err := ParseBlindMode(string(b.Mode)); err != nil {
		b.Mode = BlindDisabled
	}
	b.Interval = clamp(b.Interval, MinBlindInterval, MaxBlindInterval)
	b.Reveal = clamp(b.Reveal, MinBlindReveal, max(MinBlindReveal, b.Interval-blindRevealGap))
	return b
}

// structural reports whether moving from c to o requires a new match.
func (c Config) structural(o Config) bool {
	return c.PlayerCount != o.PlayerCount ||
		c.Dimension != o.Dimension ||
		c.BoardSize != o.BoardSize ||
		c.WinLength != o.WinLength ||
		c.DeadCells != o.DeadCells
}

func clamp[T int | time.Duration](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
