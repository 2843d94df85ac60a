// Package claim holds per-cell claim state for one board.
//
// The game engine is the only writer. All operations are synchronous and
// touch nothing outside the store.
package claim

import "fmt"

// Kind classifies a cell's claim.
type Kind uint8

const (
	// Unclaimed cells may be claimed by the player whose turn it is.
	Unclaimed Kind = iota
	// Dead cells are excluded from play for the round.
	Dead
	// Claimed cells belong to State.Player.
	Claimed
)

func (k Kind) String() string {
	switch k {
	case Unclaimed:
		return "unclaimed"
	case Dead:
		return "dead"
	case Claimed:
		return "claimed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// State is the claim on a single cell. Player is meaningful only when
// Kind is Claimed; a hidden owner is reported as -1.
type State struct {
	Kind   Kind `json:"kind"`
	Player int  `json:"player"`
}

// ClaimedBy returns the state of a cell owned by player.
func ClaimedBy(player int) State {
	return State{Kind: Claimed, Player: player}
}

// IsClaimedBy reports whether the state is a claim by player.
func (s State) IsClaimedBy(player int) bool {
	return s.Kind == Claimed && s.Player == player
}

func (s State) String() string {
	if s.Kind == Claimed {
		return fmt.Sprintf("claimed(%d)", s.Player)
	}
	return s.Kind.String()
}

// Store maps cell index to claim state plus a highlight flag.
type Store struct {
	states      []State
	highlighted []bool
}

// New creates a store of cells unclaimed cells.
func New(cells int) *Store {
	s := &Store{
		states:      make([]State, cells),
		highlighted: make([]bool, cells),
	}
	for i := range s.states {
		s.states[i] = State{Kind: Unclaimed, Player: -1}
	}
	return s
}

// Len returns the number of cells.
func (s *Store) Len() int { return len(s.states) }

func (s *Store) valid(i int) bool { return i >= 0 && i < len(s.states) }

// Get returns the state of cell i. Out-of-range indexes read as Dead so
// they are never claimable.
func (s *Store) Get(i int) State {
	if !s.valid(i) {
		return State{Kind: Dead, Player: -1}
	}
	return s.states[i]
}

// Claim assigns cell i to player. It is a no-op returning false unless the
// cell is Unclaimed.
func (s *Store) Claim(i, player int) bool {
	if !s.valid(i) || s.states[i].Kind != Unclaimed {
		return false
	}
	s.states[i] = ClaimedBy(player)
	return true
}

// MarkDead removes cell i from play.
func (s *Store) MarkDead(i int) {
	if !s.valid(i) {
		return
	}
	s.states[i] = State{Kind: Dead, Player: -1}
}

// Reset sets every non-dead cell to Unclaimed and clears highlights.
func (s *Store) Reset() {
	for i := range s.states {
		if s.states[i].Kind != Dead {
			s.states[i] = State{Kind: Unclaimed, Player: -1}
		}
		s.highlighted[i] = false
	}
}

// ResetAll is Reset that also revives dead cells. Used before a new set of
// dead cells is drawn.
func (s *Store) ResetAll() {
	for i := range s.states {
		s.states[i] = State{Kind: Unclaimed, Player: -1}
		s.highlighted[i] = false
	}
}

// Highlight flags cell i as part of a scored line.
func (s *Store) Highlight(i int) {
	if s.valid(i) {
		s.highlighted[i] = true
	}
}

// Highlighted reports whether cell i is part of a scored line.
func (s *Store) Highlighted(i int) bool {
	return s.valid(i) && s.highlighted[i]
}

// Count returns how many cells have the given kind.
func (s *Store) Count(kind Kind) int {
	n := 0
	for _, st := range s.states {
		if st.Kind == kind {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of all cell states.
func (s *Store) Snapshot() []State {
	out := make([]State, len(s.states))
	copy(out, s.states)
	return out
}
