package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/hypertoe/internal/game"
)

// timeLayout has a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MatchRecord is one match: everything needed to rebuild its opening
// position.
type MatchRecord struct {
	ID         string
	Seed       uint64
	Config     game.Config
	ConfigHash string
	AISeats    []int
	StartedAt  time.Time
}

// RoundRecord is one finished round.
type RoundRecord struct {
	MatchID   string
	Number    int
	Outcome   string
	Winner    int
	TurnCount int
	Scores    []int
	Lines     [][]int
}

// EventRecord is one logged engine event. Cell and Player are -1 when
// not applicable; Payload holds kind-specific JSON.
type EventRecord struct {
	MatchID string
	Seq     int64
	Round   int
	Kind    string
	Source  string
	Player  int
	Cell    int
	Payload string
}

// WriteMatch inserts a match record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// ConfigHash is computed from Config; any value in the record is ignored.
func (s *Store) WriteMatch(ctx context.Context, m MatchRecord) error {
	cfgJSON, hash, err := marshalConfig(m.Config)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}
	seats := m.AISeats
	if seats == nil {
		seats = []int{}
	}
	seatsJSON, err := marshalJSON(seats)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}

	// Seeds use the full uint64 range; SQLite stores the same bits as int64.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (id, seed, config, config_hash, ai_seats, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		m.ID,
		int64(m.Seed),
		cfgJSON,
		hash,
		seatsJSON,
		m.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}
	return nil
}

// WriteRound inserts a round record. A second write for the same
// (match, number) is silently ignored.
//
// Note: The match referenced by MatchID must exist (foreign key constraint).
func (s *Store) WriteRound(ctx context.Context, r RoundRecord) error {
	scores := r.Scores
	if scores == nil {
		scores = []int{}
	}
	lines := r.Lines
	if lines == nil {
		lines = [][]int{}
	}
	scoresJSON, err := marshalJSON(scores)
	if err != nil {
		return fmt.Errorf("write round: %w", err)
	}
	linesJSON, err := marshalJSON(lines)
	if err != nil {
		return fmt.Errorf("write round: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rounds (match_id, number, outcome, winner, turn_count, scores, lines)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.MatchID,
		r.Number,
		r.Outcome,
		r.Winner,
		r.TurnCount,
		scoresJSON,
		linesJSON,
	)
	if err != nil {
		return fmt.Errorf("write round: %w", err)
	}
	return nil
}

// WriteEvent appends an event. A second write for the same (match, seq)
// is silently ignored.
func (s *Store) WriteEvent(ctx context.Context, ev EventRecord) error {
	var payload any
	if ev.Payload != "" {
		payload = ev.Payload
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (match_id, seq, round, kind, source, player, cell, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ev.MatchID,
		ev.Seq,
		ev.Round,
		ev.Kind,
		ev.Source,
		ev.Player,
		ev.Cell,
		payload,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
