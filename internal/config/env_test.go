package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/game"
)

func TestApplyEnvFrom(t *testing.T) {
	base := Default()
	base.Game.BoardSize = 5

	s, err := ApplyEnvFrom(base, map[string]string{
		"HYPERTOE_PLAYERS":     "3",
		"HYPERTOE_AI_DELAY":    "1s",
		"HYPERTOE_AI_PLAYERS":  "1,2",
		"HYPERTOE_SCORE_MODE":  "highest",
		"HYPERTOE_ROOM":        "den",
		"HYPERTOE_RESET_DELAY": "0s",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Game.PlayerCount)
	assert.Equal(t, 5, s.Game.BoardSize, "unset variables keep the file value")
	assert.Equal(t, time.Second, s.Game.AIDelay)
	assert.Equal(t, []int{1, 2}, s.AIPlayers)
	assert.Equal(t, game.ScoreHighest, s.Game.Score.Mode)
	assert.Equal(t, "den", s.Room)
	assert.Equal(t, time.Duration(0), s.ResetDelay)
	assert.Equal(t, base.RelayURL, s.RelayURL)
}

func TestApplyEnvFrom_Empty(t *testing.T) {
	s, err := ApplyEnvFrom(Default(), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestApplyEnvFrom_BadValue(t *testing.T) {
	_, err := ApplyEnvFrom(Default(), map[string]string{"HYPERTOE_PLAYERS": "many"})
	assert.Error(t, err)
}
