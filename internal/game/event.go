package game

import "github.com/roach88/hypertoe/internal/combo"

// Source says what caused an event.
type Source uint8

const (
	SourceHuman Source = iota
	SourceAI
	SourceTimer
	SourceSystem
)

func (s Source) String() string {
	switch s {
	case SourceHuman:
		return "human"
	case SourceAI:
		return "ai"
	case SourceTimer:
		return "timer"
	case SourceSystem:
		return "system"
	default:
		return "unknown"
	}
}

// EventKind enumerates engine notifications.
type EventKind uint8

const (
	EventMatchStarted EventKind = iota + 1
	EventMoveApplied
	EventTurnPassed
	EventScored
	EventRoundOver
	EventRoundStarted
	EventConfigChanged
	EventPreferencesChanged
	EventBlindChanged
	EventPlayerChanged
)

var eventKindNames = map[EventKind]string{
	EventMatchStarted:       "match_started",
	EventMoveApplied:        "move_applied",
	EventTurnPassed:         "turn_passed",
	EventScored:             "scored",
	EventRoundOver:          "round_over",
	EventRoundStarted:       "round_started",
	EventConfigChanged:      "config_changed",
	EventPreferencesChanged: "preferences_changed",
	EventBlindChanged:       "blind_changed",
	EventPlayerChanged:      "player_changed",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is delivered to listeners after the engine state it describes has
// been applied. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Source Source
	Round  int

	// MoveApplied, TurnPassed, Scored, PlayerChanged.
	Player int
	// MoveApplied.
	Cell      int
	TurnCount int
	// Scored.
	Combination combo.Combination
	Score       int
	// RoundOver.
	Outcome Outcome
	// MatchStarted, ConfigChanged.
	Config Config
	Seed   uint64
	// MatchStarted.
	Players []Player
	// PlayerChanged.
	Seat Player
	// PreferencesChanged.
	Preferences []int
	// BlindChanged.
	Hidden bool
}

// Listener observes engine events. OnEvent runs synchronously on the
// engine's goroutine and must not call back into the engine.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev Event) { f(ev) }
