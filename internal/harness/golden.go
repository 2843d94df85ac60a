package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hypertoe/internal/wire"
)

// TraceSnapshot is what a golden file holds: the scenario's trace and the
// final state, as canonical JSON.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
	Final    FinalState   `json:"final"`
}

// Snapshot encodes result as canonical JSON.
func Snapshot(name string, result *Result) ([]byte, error) {
	return wire.Marshal(TraceSnapshot{
		Scenario: name,
		Trace:    result.Trace,
		Final:    result.Final,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
