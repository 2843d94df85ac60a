package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] r%d %s (%s)%s\n", ev.Seq, ev.Round, ev.Kind, ev.Source, traceDetail(ev))
	}

	return buf.String()
}

func traceDetail(ev TraceEvent) string {
	var parts []string
	if ev.Player != nil {
		parts = append(parts, "player="+strconv.Itoa(*ev.Player))
	}
	if ev.Cell != nil {
		parts = append(parts, "cell="+strconv.Itoa(*ev.Cell))
	}
	if ev.Line != nil {
		parts = append(parts, fmt.Sprintf("line=%v", ev.Line))
	}
	if ev.Outcome != "" {
		parts = append(parts, "outcome="+ev.Outcome)
	}
	if ev.Winner != nil {
		parts = append(parts, "winner="+strconv.Itoa(*ev.Winner))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// EvaluateAssertions checks every assertion against the result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertCell:
		return assertCell(result, a)
	case AssertPhase:
		return compare(result, a.Type, a.Phase, result.Final.Phase)
	case AssertScores:
		return compare(result, a.Type, fmt.Sprint(a.Scores), fmt.Sprint(result.Final.Scores))
	case AssertRound:
		if a.Round != nil {
			if err := compare(result, "round number", strconv.Itoa(*a.Round), strconv.Itoa(result.Final.Round)); err != nil {
				return err
			}
		}
		if a.Turn != nil {
			return compare(result, "current turn", strconv.Itoa(*a.Turn), strconv.Itoa(result.Final.CurrentTurn))
		}
		return nil
	case AssertEventCount:
		return assertEventCount(result, a)
	case AssertEventOrder:
		return assertEventOrder(result, a)
	case AssertClaimedLines:
		return compare(result, a.Type, fmt.Sprint(a.Lines), fmt.Sprint(result.Final.Claimed))
	case AssertBoard:
		return compare(result, a.Type, a.Board, result.Final.Board)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func compare(result *Result, typ, expected, actual string) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{Type: typ, Expected: expected, Actual: actual, Trace: result.Trace}
}

// assertCell checks the final claim on one cell. Player is only checked
// for claimed cells.
func assertCell(result *Result, a Assertion) error {
	board := result.Final.Board
	if a.Cell < 0 || a.Cell >= len(board) {
		return fmt.Errorf("cell %d out of range [0, %d)", a.Cell, len(board))
	}
	ch := board[a.Cell]

	var state string
	player := -1
	switch {
	case ch == '.':
		state = "unclaimed"
	case ch == '#':
		state = "dead"
	default:
		state = "claimed"
		player = int(ch - '0')
	}

	expected := a.State
	actual := state
	if a.Player != nil {
		expected = fmt.Sprintf("%s(%d)", a.State, *a.Player)
		actual = fmt.Sprintf("%s(%d)", state, player)
	}
	return compare(result, fmt.Sprintf("cell %d", a.Cell), expected, actual)
}

func assertEventCount(result *Result, a Assertion) error {
	count := 0
	for _, ev := range result.Trace {
		if ev.Kind == a.Event {
			count++
		}
	}
	return compare(result, a.Type,
		fmt.Sprintf("%d %s events", a.Count, a.Event),
		fmt.Sprintf("%d %s events", count, a.Event))
}

// assertEventOrder checks that the given kinds occur in the trace in this
// order. Other events may appear in between.
func assertEventOrder(result *Result, a Assertion) error {
	next := 0
	for _, ev := range result.Trace {
		if next < len(a.Events) && ev.Kind == a.Events[next] {
			next++
		}
	}
	if next == len(a.Events) {
		return nil
	}
	kinds := make([]string, len(result.Trace))
	for i, ev := range result.Trace {
		kinds[i] = ev.Kind
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: strings.Join(a.Events, " -> "),
		Actual:   fmt.Sprintf("%s missing after %s", a.Events[next], strings.Join(slices.Compact(kinds), " -> ")),
		Trace:    result.Trace,
	}
}
