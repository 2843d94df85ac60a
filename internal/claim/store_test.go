package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_Claim(t *testing.T) {
	s := New(9)

	assert.True(t, s.Claim(4, 1))
	assert.Equal(t, ClaimedBy(1), s.Get(4))
	assert.True(t, s.Get(4).IsClaimedBy(1))

	// Second claim on the same cell is a no-op.
	assert.False(t, s.Claim(4, 0))
	assert.Equal(t, ClaimedBy(1), s.Get(4))

	assert.False(t, s.Claim(9, 0), "out of range")
	assert.False(t, s.Claim(-1, 0), "negative index")
}

func TestStore_DeadCells(t *testing.T) {
	s := New(9)
	s.MarkDead(3)

	assert.Equal(t, Dead, s.Get(3).Kind)
	assert.False(t, s.Claim(3, 0))
	assert.Equal(t, 1, s.Count(Dead))
	assert.Equal(t, Dead, s.Get(42).Kind, "out of range reads as dead")
}

func TestStore_Reset(t *testing.T) {
	s := New(9)
	s.MarkDead(8)
	s.Claim(0, 0)
	s.Claim(1, 1)
	s.Highlight(0)

	s.Reset()

	assert.Equal(t, Unclaimed, s.Get(0).Kind)
	assert.Equal(t, Unclaimed, s.Get(1).Kind)
	assert.False(t, s.Highlighted(0))
	assert.Equal(t, Dead, s.Get(8).Kind, "dead cells survive Reset")
	assert.Equal(t, 8, s.Count(Unclaimed))

	s.ResetAll()
	assert.Equal(t, 9, s.Count(Unclaimed))
}

func TestStore_Snapshot(t *testing.T) {
	s := New(4)
	s.Claim(2, 3)

	snap := s.Snapshot()
	snap[2] = State{Kind: Unclaimed}

	assert.Equal(t, ClaimedBy(3), s.Get(2), "snapshot is a copy")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "claimed(2)", ClaimedBy(2).String())
	assert.Equal(t, "dead", State{Kind: Dead}.String())
	assert.Equal(t, "unclaimed", State{Kind: Unclaimed}.String())
}
