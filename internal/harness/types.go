package harness

import (
	"slices"
	"strconv"

	"github.com/roach88/hypertoe/internal/game"
)

// TraceEvent is one engine event as recorded by the harness. Only the
// fields relevant to Kind are set.
type TraceEvent struct {
	Seq       int    `json:"seq"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	Round     int    `json:"round"`
	Player    *int   `json:"player,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
	TurnCount *int   `json:"turn_count,omitempty"`
	Line      []int  `json:"line,omitempty"`
	Score     *int   `json:"score,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Winner    *int   `json:"winner,omitempty"`
	// Seed is decimal; seeds use the full uint64 range.
	Seed   string `json:"seed,omitempty"`
	Hidden *bool  `json:"hidden,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// traceEvent projects a game event onto the trace.
func traceEvent(seq int, ev game.Event) TraceEvent {
	te := TraceEvent{
		Seq:    seq,
		Kind:   ev.Kind.String(),
		Source: ev.Source.String(),
		Round:  ev.Round,
	}
	switch ev.Kind {
	case game.EventMatchStarted:
		te.Seed = strconv.FormatUint(ev.Seed, 10)
	case game.EventMoveApplied:
		te.Player = ptr(ev.Player)
		te.Cell = ptr(ev.Cell)
		te.TurnCount = ptr(ev.TurnCount)
	case game.EventTurnPassed:
		te.Player = ptr(ev.Player)
		te.TurnCount = ptr(ev.TurnCount)
	case game.EventScored:
		te.Player = ptr(ev.Player)
		te.Line = slices.Clone(ev.Combination)
		te.Score = ptr(ev.Score)
	case game.EventRoundOver:
		te.Outcome = ev.Outcome.Kind.String()
		te.TurnCount = ptr(ev.TurnCount)
		if ev.Outcome.Kind == game.OutcomeWin {
			te.Winner = ptr(ev.Outcome.Winner)
		}
	case game.EventRoundStarted, game.EventPlayerChanged:
		te.Player = ptr(ev.Player)
	case game.EventBlindChanged:
		te.Hidden = ptr(ev.Hidden)
	}
	return te
}

// FinalState is the engine state after the last step.
type FinalState struct {
	Phase       string `json:"phase"`
	Round       int    `json:"round"`
	CurrentTurn int    `json:"current_turn"`
	TurnCount   int    `json:"turn_count"`
	Scores      []int  `json:"scores"`
	// Board has one character per cell: '.' unclaimed, '#' dead, or the
	// owner's player number.
	Board     string  `json:"board"`
	DeadCells []int   `json:"dead_cells"`
	Claimed   [][]int `json:"claimed"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds every engine event in emission order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Final FinalState `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// OnEvent appends ev to the trace.
func (r *Result) OnEvent(ev game.Event) {
	r.Trace = append(r.Trace, traceEvent(len(r.Trace)+1, ev))
}
