package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_CommitLifecycle(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/commit_lifecycle.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_CommitLifecycle -update
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestMarshalSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/bulk_commits.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalSnapshot_Shape(t *testing.T) {
	scenario := &Scenario{
		Name:        "shape",
		Description: "Snapshot layout",
		Schema:      minimalSchema,
		Steps: []Step{
			{Op: OpAddOne, Table: "Tags", Record: &RecordSpec{ID: "go", Label: "go", Data: map[string]any{"name": "Go"}}},
		},
		Assertions: []Assertion{{Type: AssertTableIDs, Table: "Tags", IDs: []string{"go"}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	data, err := MarshalSnapshot(scenario.Name, result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"shape","store":{"Tags":{"entities":{"go":{"data":{"name":"Go"},"id":"go","label":"go"}},"ids":["go"]}},"trace":[{"changed":true,"ids":["go"],"op":"add_one","table":"Tags"}]}`,
		string(data))
}

func TestMarshalSnapshot_NoStore(t *testing.T) {
	data, err := MarshalSnapshot("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"scenario_name":"empty","store":{},"trace":[]}`, string(data))
}
