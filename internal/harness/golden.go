package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/relatixjs/relatix/internal/ir"
)

// Snapshot captures the observable outcome of a scenario execution.
type Snapshot struct {
	ScenarioName string
	Trace        []StepTrace
	Store        ir.Object
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, st := range s.Trace {
		ids := make([]any, len(st.IDs))
		for j, id := range st.IDs {
			ids[j] = id
		}
		trace[i] = map[string]any{
			"op":      st.Op,
			"table":   st.Table,
			"changed": st.Changed,
			"ids":     ids,
		}
	}

	store := s.Store
	if store == nil {
		store = ir.Object{}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"store":         store,
	}
}

// MarshalSnapshot renders the snapshot of result as canonical JSON.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	if result.Store != nil {
		snapshot.Store = result.Store.Wire()
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario, fails the test on any assertion error
// and compares the snapshot against a golden file stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the snapshot of an existing result against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
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
