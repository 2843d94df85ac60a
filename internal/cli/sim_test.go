package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/game"
)

func runSimJSON(t *testing.T, args ...string) SimResult {
	t.Helper()
	out, err := runRoot(t, "", append([]string{"--format", "json", "sim"}, args...)...)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   SimResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestSim_Deterministic(t *testing.T) {
	first := runSimJSON(t, "--rounds", "3", "--seed", "7")
	second := runSimJSON(t, "--rounds", "3", "--seed", "7")

	assert.Equal(t, first, second)
	assert.Equal(t, uint64(7), first.Seed)
	assert.Equal(t, "3x3, 3 in a row", first.Board)
	require.Len(t, first.Rounds, 3)

	total := first.Draws
	for _, w := range first.Wins {
		total += w
	}
	assert.Equal(t, 3, total)
	for i, r := range first.Rounds {
		assert.Equal(t, i+1, r.Round)
		assert.LessOrEqual(t, r.Turns, 9)
	}
}

func TestSim_TextAndDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sim.db")
	out, err := runRoot(t, "", "sim", "--rounds", "2", "--seed", "3", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "3x3, 3 in a row board, seed 3, 2 rounds")
	assert.Contains(t, out, "draws:")

	out, err = runRoot(t, "", "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All matches replay identically")
}

func TestSim_RejectsBadRounds(t *testing.T) {
	_, err := runRoot(t, "", "sim", "--rounds", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSummarize(t *testing.T) {
	rounds := []SimRound{
		{Round: 1, Outcome: "win", Winner: 1},
		{Round: 2, Outcome: "draw", Winner: -1},
		{Round: 3, Outcome: "win", Winner: 1},
	}
	res := summarize(rounds, game.DefaultConfig(), 9)
	assert.Equal(t, []int{0, 2}, res.Wins)
	assert.Equal(t, 1, res.Draws)
	assert.Equal(t, uint64(9), res.Seed)
}
