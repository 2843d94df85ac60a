package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrMatchNotFound is returned when a match ID has no record.
var ErrMatchNotFound = errors.New("match not found")

// MatchSummary is a row of the history listing.
type MatchSummary struct {
	MatchRecord
	Rounds int
}

// ListMatches returns every match, oldest first, with its finished round
// count.
func (s *Store) ListMatches(ctx context.Context) ([]MatchSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.seed, m.config, m.config_hash, m.ai_seats, m.started_at,
		       COUNT(r.number)
		FROM matches m
		LEFT JOIN rounds r ON r.match_id = m.id
		GROUP BY m.id
		ORDER BY m.started_at ASC, m.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := []MatchSummary{}
	for rows.Next() {
		var sum MatchSummary
		rec, err := scanMatch(rows, &sum.Rounds)
		if err != nil {
			return nil, err
		}
		sum.MatchRecord = rec
		matches = append(matches, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// ReadMatch returns one match record. Returns ErrMatchNotFound if id is
// unknown.
func (s *Store) ReadMatch(ctx context.Context, id string) (MatchRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, config, config_hash, ai_seats, started_at
		FROM matches
		WHERE id = ?
	`, id)
	rec, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return MatchRecord{}, fmt.Errorf("read match %s: %w", id, ErrMatchNotFound)
	}
	if err != nil {
		return MatchRecord{}, fmt.Errorf("read match %s: %w", id, err)
	}
	return rec, nil
}

// ReadRounds returns the finished rounds of a match in order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadRounds(ctx context.Context, matchID string) ([]RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, number, outcome, winner, turn_count, scores, lines
		FROM rounds
		WHERE match_id = ?
		ORDER BY number ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	rounds := []RoundRecord{}
	for rows.Next() {
		var (
			r                  RoundRecord
			scoresJSON, lineJS string
		)
		if err := rows.Scan(&r.MatchID, &r.Number, &r.Outcome, &r.Winner, &r.TurnCount, &scoresJSON, &lineJS); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if r.Scores, err = unmarshalInts(scoresJSON); err != nil {
			return nil, err
		}
		if r.Lines, err = unmarshalLines(lineJS); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return rounds, nil
}

// ReadEvents returns the events of a match in seq order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadEvents(ctx context.Context, matchID string) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, seq, round, kind, source, player, cell, payload
		FROM events
		WHERE match_id = ?
		ORDER BY seq ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []EventRecord{}
	for rows.Next() {
		var (
			ev      EventRecord
			payload sql.NullString
		)
		if err := rows.Scan(&ev.MatchID, &ev.Seq, &ev.Round, &ev.Kind, &ev.Source, &ev.Player, &ev.Cell, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Payload = payload.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(sc scanner, extra ...any) (MatchRecord, error) {
	var (
		rec                MatchRecord
		seed               int64
		cfgJSON, seatsJSON string
		startedAt          string
	)
	dest := append([]any{&rec.ID, &seed, &cfgJSON, &rec.ConfigHash, &seatsJSON, &startedAt}, extra...)
	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MatchRecord{}, err
		}
		return MatchRecord{}, fmt.Errorf("scan match: %w", err)
	}
	rec.Seed = uint64(seed)

	var err error
	if rec.Config, err = unmarshalConfig(cfgJSON); err != nil {
		return MatchRecord{}, err
	}
	if rec.AISeats, err = unmarshalInts(seatsJSON); err != nil {
		return MatchRecord{}, err
	}
	if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return MatchRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	return rec, nil
}
