package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/hypertoe/internal/game"
)

// Mismatch is one difference between a recorded round and its replay.
type Mismatch struct {
	Round    int
	Field    string
	Recorded string
	Replayed string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("round %d %s: recorded %s, replayed %s", m.Round, m.Field, m.Recorded, m.Replayed)
}

// ReplayResult is the outcome of re-running a recorded match.
type ReplayResult struct {
	MatchID    string
	Recorded   []RoundRecord
	Replayed   []RoundRecord
	Mismatches []Mismatch
}

// OK reports whether the replay reproduced every recorded round.
func (r ReplayResult) OK() bool { return len(r.Mismatches) == 0 }

// Replay rebuilds a match from its seed and configuration and feeds it the
// recorded claims, passes, resets and scoring changes. AI moves are
// replayed as recorded, so every seat is driven from the log.
//
// The match seed fixes dead cells, colours and the preference shuffle, so
// the same log must yield the same rounds.
func (s *Store) Replay(ctx context.Context, matchID string) (ReplayResult, error) {
	m, err := s.ReadMatch(ctx, matchID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	recorded, err := s.ReadRounds(ctx, matchID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	events, err := s.ReadEvents(ctx, matchID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	var (
		tally    roundTally
		replayed = []RoundRecord{}
	)
	tally.reset(m.Config.PlayerCount)
	collect := game.ListenerFunc(func(ev game.Event) {
		if round, done := tally.observe(ev); done {
			round.MatchID = matchID
			replayed = append(replayed, round)
		}
	})

	e := game.New(
		game.WithConfig(m.Config),
		game.WithSeeds(game.FixedSeeds(m.Seed)),
		game.WithScheduler(game.NoTimers{}),
		game.WithResetDelay(0),
		game.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		game.WithListener(collect),
	)
	if e.MatchSeed() != m.Seed {
		return ReplayResult{}, fmt.Errorf("replay %s: seed mismatch", matchID)
	}

	for _, ev := range events {
		stop, err := replayEvent(e, ev)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay %s seq %d: %w", matchID, ev.Seq, err)
		}
		if stop {
			break
		}
	}

	return ReplayResult{
		MatchID:    matchID,
		Recorded:   recorded,
		Replayed:   replayed,
		Mismatches: compareRounds(recorded, replayed),
	}, nil
}

// replayEvent applies one logged event. It reports stop when the event
// ended the match (a structural setting change).
func replayEvent(e *game.Engine, ev EventRecord) (bool, error) {
	switch ev.Kind {
	case game.EventMoveApplied.String():
		res := e.SubmitMove(ev.Cell, ev.Player)
		if !res.Accepted {
			return false, fmt.Errorf("move %d by player %d rejected: %s", ev.Cell, ev.Player, res.Reason)
		}
	case game.EventTurnPassed.String():
		if _, ok := e.ForcePass(); !ok {
			return false, fmt.Errorf("pass by player %d not possible in phase %s", ev.Player, e.Phase())
		}
	case game.EventRoundStarted.String():
		// Automatic resets already happened; only explicit ones are replayed.
		if ev.Source == game.SourceHuman.String() {
			e.ResetGame()
		}
	case game.EventConfigChanged.String():
		var cfg game.Config
		if err := json.Unmarshal([]byte(ev.Payload), &cfg); err != nil {
			return false, fmt.Errorf("decode config: %w", err)
		}
		cur := e.Config()
		if cfg.PlayerCount != cur.PlayerCount || cfg.Dimension != cur.Dimension ||
			cfg.BoardSize != cur.BoardSize || cfg.WinLength != cur.WinLength ||
			cfg.DeadCells != cur.DeadCells {
			return true, nil
		}
		e.SetScoreMode(cfg.Score.Mode)
		e.SetGoalScore(cfg.Score.Goal)
	}
	return false, nil
}

func compareRounds(recorded, replayed []RoundRecord) []Mismatch {
	var out []Mismatch
	if len(recorded) != len(replayed) {
		out = append(out, Mismatch{
			Field:    "rounds",
			Recorded: fmt.Sprint(len(recorded)),
			Replayed: fmt.Sprint(len(replayed)),
		})
	}
	for i := range min(len(recorded), len(replayed)) {
		a, b := recorded[i], replayed[i]
		add := func(field string, x, y any) {
			out = append(out, Mismatch{Round: a.Number, Field: field, Recorded: fmt.Sprint(x), Replayed: fmt.Sprint(y)})
		}
		if a.Number != b.Number {
			add("number", a.Number, b.Number)
		}
		if a.Outcome != b.Outcome {
			add("outcome", a.Outcome, b.Outcome)
		}
		if a.Winner != b.Winner {
			add("winner", a.Winner, b.Winner)
		}
		if a.TurnCount != b.TurnCount {
			add("turn_count", a.TurnCount, b.TurnCount)
		}
		if !slices.Equal(a.Scores, b.Scores) {
			add("scores", a.Scores, b.Scores)
		}
		if !slices.EqualFunc(a.Lines, b.Lines, slices.Equal[[]int]) {
			add("lines", a.Lines, b.Lines)
		}
	}
	return out
}
