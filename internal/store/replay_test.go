package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/engine"
	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/testutil"
)

func TestReplay_ReproducesRecordedRounds(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	cfg := game.DefaultConfig()
	cfg.BoardSize = 4
	cfg.WinLength = 3
	cfg.DeadCells = 3
	cfg.AIDelay = 0
	cfg.Score = game.ScoreConfig{Mode: game.ScoreHighest, Goal: 1}

	rec := NewRecorder(ctx, s, engine.NewFixedGenerator("match-1"), WithRecorderLogger(quietLogger()))
	sched := testutil.NewManualScheduler()
	e := game.New(
		game.WithConfig(cfg),
		game.WithSeeds(game.FixedSeeds(99)),
		game.WithScheduler(sched),
		game.WithResetDelay(0),
		game.WithAIPlayers(0, 1),
		game.WithLogger(quietLogger()),
		game.WithListener(rec),
	)

	// Each round's first AI move is scheduled; the rest run inline.
	for range 3 {
		require.True(t, sched.FireNext())
	}
	e.SetGoalScore(2)
	e.SetScoreMode(game.ScoreGoal)
	require.True(t, sched.FireNext())
	require.NoError(t, rec.Err())

	rounds, err := s.ReadRounds(ctx, "match-1")
	require.NoError(t, err)
	require.Len(t, rounds, 4)

	res, err := s.Replay(ctx, "match-1")
	require.NoError(t, err)
	assert.True(t, res.OK(), "mismatches: %v", res.Mismatches)
	assert.Equal(t, res.Recorded, res.Replayed)
}

func TestReplay_ExplicitResetAndPass(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	e, rec := newRecordedEngine(t, s, "match-1")

	submit(t, e, 4, 0)
	e.ResetGame()
	_, ok := e.ForcePass()
	require.True(t, ok)
	submit(t, e, 0, 4, 1, 3, 2)
	require.NoError(t, rec.Err())

	res, err := s.Replay(ctx, "match-1")
	require.NoError(t, err)
	assert.True(t, res.OK(), "mismatches: %v", res.Mismatches)
	require.Len(t, res.Replayed, 1)
	assert.Equal(t, 2, res.Replayed[0].Number)
}

func TestReplay_DetectsTampering(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	e, _ := newRecordedEngine(t, s, "match-1")
	submit(t, e, 0, 1, 3, 4, 6)

	_, err := s.db.Exec(`UPDATE rounds SET winner = 1 WHERE match_id = 'match-1'`)
	require.NoError(t, err)

	res, err := s.Replay(ctx, "match-1")
	require.NoError(t, err)
	require.False(t, res.OK())
	assert.Equal(t, Mismatch{Round: 1, Field: "winner", Recorded: "1", Replayed: "0"}, res.Mismatches[0])
	assert.Equal(t, "round 1 winner: recorded 1, replayed 0", res.Mismatches[0].String())
}

func TestReplay_StopsAtStructuralChange(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	e, _ := newRecordedEngine(t, s, "match-1", "match-2")

	submit(t, e, 0, 1, 3, 4, 6)
	e.SetDimension(3)
	submit(t, e, 13)

	for _, id := range []string{"match-1", "match-2"} {
		res, err := s.Replay(ctx, id)
		require.NoError(t, err, id)
		assert.True(t, res.OK(), "%s mismatches: %v", id, res.Mismatches)
	}
}

func TestReplay_UnknownMatch(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Replay(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestReplay_RejectedMoveIsAnError(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.WriteMatch(ctx, createTestMatch("match-1", 5)))
	require.NoError(t, s.WriteEvent(ctx, EventRecord{
		MatchID: "match-1", Seq: 1, Round: 1, Kind: "move_applied", Source: "human", Player: 1, Cell: 0,
	}))

	_, err := s.Replay(ctx, "match-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong_turn")
}
