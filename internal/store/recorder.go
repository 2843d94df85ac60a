package store

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/hypertoe/internal/game"
)

// IDGenerator names new matches.
type IDGenerator interface {
	Generate() string
}

// Recorder is a game.Listener that logs matches, rounds and events.
// It runs on the engine goroutine and writes synchronously. A failed
// write is logged and kept in Err; recording continues.
type Recorder struct {
	store  *Store
	ctx    context.Context
	ids    IDGenerator
	now    func() time.Time
	logger *slog.Logger

	matchID string
	seq     int64
	tally   roundTally
	matches []string
	err     error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the wall clock used for match start times.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithRecorderLogger sets the recorder's logger.
func WithRecorderLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder creates a recorder writing to s.
func NewRecorder(ctx context.Context, s *Store, ids IDGenerator, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  s,
		ctx:    ctx,
		ids:    ids,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MatchID returns the match being recorded.
func (r *Recorder) MatchID() string { return r.matchID }

// Matches returns the IDs of all matches recorded so far.
func (r *Recorder) Matches() []string { return slices.Clone(r.matches) }

// Err returns the first write error.
func (r *Recorder) Err() error { return r.err }

// OnEvent implements game.Listener.
func (r *Recorder) OnEvent(ev game.Event) {
	if ev.Kind == game.EventMatchStarted {
		r.startMatch(ev)
		return
	}
	if r.matchID == "" {
		return
	}

	if round, done := r.tally.observe(ev); done {
		round.MatchID = r.matchID
		r.check(r.store.WriteRound(r.ctx, round))
	}

	rec, ok := eventRecord(ev)
	if !ok {
		return
	}
	r.seq++
	rec.MatchID = r.matchID
	rec.Seq = r.seq
	r.check(r.store.WriteEvent(r.ctx, rec))
}

func (r *Recorder) startMatch(ev game.Event) {
	r.matchID = r.ids.Generate()
	r.seq = 0
	r.tally.reset(len(ev.Players))
	r.matches = append(r.matches, r.matchID)

	var seats []int
	for _, p := range ev.Players {
		if p.IsAI {
			seats = append(seats, p.ID)
		}
	}
	r.check(r.store.WriteMatch(r.ctx, MatchRecord{
		ID:        r.matchID,
		Seed:      ev.Seed,
		Config:    ev.Config,
		AISeats:   seats,
		StartedAt: r.now(),
	}))
	r.logger.Debug("recording match", "match", r.matchID, "seed", ev.Seed)
}

func (r *Recorder) check(err error) {
	if err == nil {
		return
	}
	r.logger.Error("record event", "match", r.matchID, "error", err)
	if r.err == nil {
		r.err = err
	}
}

// eventRecord maps the replay-relevant events to log rows. Blind toggles
// are timer noise and are not logged.
func eventRecord(ev game.Event) (EventRecord, bool) {
	rec := EventRecord{
		Round:  ev.Round,
		Kind:   ev.Kind.String(),
		Source: ev.Source.String(),
		Player: -1,
		Cell:   -1,
	}
	var payload any
	switch ev.Kind {
	case game.EventMoveApplied:
		rec.Player, rec.Cell = ev.Player, ev.Cell
	case game.EventTurnPassed:
		rec.Player = ev.Player
	case game.EventScored:
		rec.Player = ev.Player
		payload = []int(ev.Combination)
	case game.EventRoundOver:
		payload = ev.Outcome
	case game.EventRoundStarted:
		rec.Player = ev.Player
	case game.EventConfigChanged:
		payload = ev.Config
	case game.EventPreferencesChanged:
		payload = ev.Preferences
	case game.EventPlayerChanged:
		rec.Player = ev.Player
		payload = ev.Seat
	default:
		return EventRecord{}, false
	}
	if payload != nil {
		s, err := marshalJSON(payload)
		if err != nil {
			return EventRecord{}, false
		}
		rec.Payload = s
	}
	return rec, true
}

// roundTally accumulates scores and lines until a round ends.
type roundTally struct {
	scores []int
	lines  [][]int
}

func (t *roundTally) reset(players int) {
	t.scores = make([]int, players)
	t.lines = nil
}

func (t *roundTally) observe(ev game.Event) (RoundRecord, bool) {
	switch ev.Kind {
	case game.EventScored:
		if ev.Player >= 0 && ev.Player < len(t.scores) {
			t.scores[ev.Player] = ev.Score
		}
		t.lines = append(t.lines, slices.Clone([]int(ev.Combination)))
	case game.EventRoundStarted:
		t.reset(len(t.scores))
	case game.EventRoundOver:
		round := RoundRecord{
			Number:    ev.Round,
			Outcome:   ev.Outcome.Kind.String(),
			Winner:    ev.Outcome.Winner,
			TurnCount: ev.TurnCount,
			Scores:    slices.Clone(t.scores),
			Lines:     t.lines,
		}
		if round.Lines == nil {
			round.Lines = [][]int{}
		}
		t.reset(len(t.scores))
		return round, true
	}
	return RoundRecord{}, false
}
