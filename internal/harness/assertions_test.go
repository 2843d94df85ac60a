package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Kind: "match_started", Source: "system", Round: 1, Seed: "1"},
		{Seq: 2, Kind: "move_applied", Source: "human", Round: 1, Player: ptr(0), Cell: ptr(4), TurnCount: ptr(1)},
		{Seq: 3, Kind: "move_applied", Source: "ai", Round: 1, Player: ptr(1), Cell: ptr(0), TurnCount: ptr(2)},
		{Seq: 4, Kind: "turn_passed", Source: "timer", Round: 1, Player: ptr(0), TurnCount: ptr(2)},
	}
	r.Final = FinalState{
		Phase:       "awaiting_move",
		Round:       1,
		CurrentTurn: 1,
		TurnCount:   2,
		Scores:      []int{0, 0},
		Board:       "1#..0....",
		DeadCells:   []int{1},
		Claimed:     [][]int{},
	}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertCell, Cell: 0, State: "claimed", Player: intPtr(1)},
		{Type: AssertCell, Cell: 1, State: "dead"},
		{Type: AssertCell, Cell: 2, State: "unclaimed"},
		{Type: AssertCell, Cell: 4, State: "claimed"},
		{Type: AssertPhase, Phase: "awaiting_move"},
		{Type: AssertScores, Scores: []int{0, 0}},
		{Type: AssertRound, Round: intPtr(1), Turn: intPtr(1)},
		{Type: AssertEventCount, Event: "move_applied", Count: 2},
		{Type: AssertEventCount, Event: "scored", Count: 0},
		{Type: AssertEventOrder, Events: []string{"match_started", "move_applied", "turn_passed"}},
		{Type: AssertClaimedLines, Lines: [][]int{}},
		{Type: AssertBoard, Board: "1#..0...."},
	}

	assert.Empty(t, EvaluateAssertions(sampleResult(), assertions))
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"cell owner", Assertion{Type: AssertCell, Cell: 0, State: "claimed", Player: intPtr(0)}, "Expected: claimed(0)"},
		{"cell range", Assertion{Type: AssertCell, Cell: 20, State: "dead"}, "out of range"},
		{"phase", Assertion{Type: AssertPhase, Phase: "round_over"}, "Actual: awaiting_move"},
		{"scores", Assertion{Type: AssertScores, Scores: []int{1, 0}}, "Expected: [1 0]"},
		{"turn", Assertion{Type: AssertRound, Turn: intPtr(0)}, "current turn"},
		{"count", Assertion{Type: AssertEventCount, Event: "move_applied", Count: 3}, "Actual: 2 move_applied events"},
		{"order", Assertion{Type: AssertEventOrder, Events: []string{"turn_passed", "move_applied"}}, "move_applied missing"},
		{"lines", Assertion{Type: AssertClaimedLines, Lines: [][]int{{0, 4, 8}}}, "Expected: [[0 4 8]]"},
		{"board", Assertion{Type: AssertBoard, Board: "........."}, "Assertion failed: board"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{Type: "phase", Expected: "a", Actual: "b", Trace: sampleResult().Trace}
	msg := err.Error()
	assert.Contains(t, msg, "[2] r1 move_applied (human) player=0 cell=4")
	assert.Contains(t, msg, "[4] r1 turn_passed (timer) player=0")
}
