package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/engine"
	"github.com/roach88/hypertoe/internal/game"
)

func newRecordedEngine(t *testing.T, s *Store, ids ...string) (*game.Engine, *Recorder) {
	t.Helper()
	rec := NewRecorder(context.Background(), s, engine.NewFixedGenerator(ids...),
		WithClock(func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }),
		WithRecorderLogger(quietLogger()),
	)
	e := game.New(
		game.WithSeeds(game.FixedSeeds(11, 12, 13)),
		game.WithScheduler(game.NoTimers{}),
		game.WithResetDelay(0),
		game.WithLogger(quietLogger()),
		game.WithListener(rec),
	)
	return e, rec
}

func submit(t *testing.T, e *game.Engine, cells ...int) {
	t.Helper()
	for _, cell := range cells {
		res := e.SubmitMove(cell, e.Round().CurrentTurn)
		require.True(t, res.Accepted, "move %d rejected: %s", cell, res.Reason)
	}
}

func TestRecorder_LogsMatchRoundsAndEvents(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	e, rec := newRecordedEngine(t, s, "match-1")

	// Column 0,3,6 for player 0.
	submit(t, e, 0, 1, 3, 4, 6)
	require.NoError(t, rec.Err())
	assert.Equal(t, "match-1", rec.MatchID())

	m, err := s.ReadMatch(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), m.Seed)
	assert.Equal(t, game.DefaultConfig(), m.Config)
	assert.Empty(t, m.AISeats)

	rounds, err := s.ReadRounds(ctx, "match-1")
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, RoundRecord{
		MatchID:   "match-1",
		Number:    1,
		Outcome:   "win",
		Winner:    0,
		TurnCount: 5,
		Scores:    []int{1, 0},
		Lines:     [][]int{{0, 3, 6}},
	}, rounds[0])

	events, err := s.ReadEvents(ctx, "match-1")
	require.NoError(t, err)
	var kinds []string
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []string{
		"preferences_changed",
		"move_applied", "move_applied", "move_applied", "move_applied", "move_applied",
		"scored", "round_over", "round_started",
	}, kinds)
	assert.Equal(t, 6, events[5].Cell)
	assert.Equal(t, "[0,3,6]", events[6].Payload)
}

func TestRecorder_StructuralChangeStartsNewMatch(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	e, rec := newRecordedEngine(t, s, "match-1", "match-2")

	submit(t, e, 4)
	require.True(t, e.SetBoardSize(4))
	require.True(t, e.SetPlayerAI(1, true))

	assert.Equal(t, []string{"match-1", "match-2"}, rec.Matches())
	require.NoError(t, rec.Err())

	list, err := s.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 4, list[1].Config.BoardSize)
	assert.Equal(t, uint64(12), list[1].Seed)

	first, err := s.ReadEvents(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, "config_changed", first[len(first)-1].Kind, "the change closes the old match")

	second, err := s.ReadEvents(ctx, "match-2")
	require.NoError(t, err)
	last := second[len(second)-1]
	assert.Equal(t, "player_changed", last.Kind)
	assert.Equal(t, 1, last.Player)
	assert.Contains(t, last.Payload, `"isAI":true`)
}
