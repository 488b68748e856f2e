package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios build a model from an inline schema and population, apply commit
// steps in order and assert on the resulting stores.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the CUE source declaring the tables.
	Schema string `yaml:"schema"`

	// Population is the seed data, a mapping of table -> key -> fields.
	// Kept as a node so reference fields can be read against the schema.
	Population yaml.Node `yaml:"population,omitempty"`

	// IDs selects how record ids are generated: "key" (default) uses the
	// population keys, "sequence" generates id-1, id-2, ...
	IDs string `yaml:"ids,omitempty"`

	// MaxDepth overrides the default resolution depth.
	MaxDepth *int `yaml:"max_depth,omitempty"`

	// Steps are the commits applied to the initial store, in order.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final store and the store returned by each step.
	Assertions []Assertion `yaml:"assertions"`
}

// Id generation modes.
const (
	IDsKey      = "key"
	IDsSequence = "sequence"
)

// Step is one commit operation on one table.
type Step struct {
	// Op is the operation, e.g. "add_one" or "update_many".
	Op string `yaml:"op"`

	// Table is the table the operation targets.
	Table string `yaml:"table"`

	// ID is the record id (update_one, remove_one; optional for create).
	ID string `yaml:"id,omitempty"`

	// IDs are the record ids (remove_many).
	IDs []string `yaml:"ids,omitempty"`

	// Record is the record to write (add_one, set_one, upsert_one).
	Record *RecordSpec `yaml:"record,omitempty"`

	// Records are the records to write (add_many, set_many, upsert_many, set_all).
	Records []RecordSpec `yaml:"records,omitempty"`

	// Changes is the change set of update_one.
	Changes map[string]any `yaml:"changes,omitempty"`

	// Updates are the change sets of update_many.
	Updates []UpdateSpec `yaml:"updates,omitempty"`

	// Label and Data describe the record built by create.
	Label string         `yaml:"label,omitempty"`
	Data  map[string]any `yaml:"data,omitempty"`
}

// RecordSpec is a record written out in a scenario. References in Data use
// the wire shape {table, id}.
type RecordSpec struct {
	ID    string         `yaml:"id"`
	Label string         `yaml:"label"`
	Data  map[string]any `yaml:"data"`
}

// UpdateSpec is one entry of update_many.
type UpdateSpec struct {
	ID      string         `yaml:"id"`
	Changes map[string]any `yaml:"changes"`
}

// Step operations.
const (
	OpAddOne     = "add_one"
	OpAddMany    = "add_many"
	OpSetOne     = "set_one"
	OpSetMany    = "set_many"
	OpUpsertOne  = "upsert_one"
	OpUpsertMany = "upsert_many"
	OpSetAll     = "set_all"
	OpUpdateOne  = "update_one"
	OpUpdateMany = "update_many"
	OpRemoveOne  = "remove_one"
	OpRemoveMany = "remove_many"
	OpRemoveAll  = "remove_all"
	OpCreate     = "create"
)

// Assertion validates the final store or a step's effect.
type Assertion struct {
	// Type specifies the assertion type:
	// - "resolves_to": deep-select Table/ID at Depth and compare with Expect
	// - "unresolved": resolve Table/ID at Depth and expect a Reason diagnostic for Ref
	// - "record": compare the stored record Table/ID with Expect {label, data}
	// - "table_ids": compare the ids of Table with IDs, in order
	// - "not_found": expect Table/ID to be absent
	// - "store_unchanged": expect Step to return its input store
	// - "store_changed": expect Step to return a new store
	Type string `yaml:"type"`

	Table string `yaml:"table,omitempty"`
	ID    string `yaml:"id,omitempty"`

	// Depth is the resolution depth. Nil means the model default.
	Depth *int `yaml:"depth,omitempty"`

	// Expect is the expected value (resolves_to, record). References use the
	// wire shape {table, id}.
	Expect any `yaml:"expect,omitempty"`

	// IDs are the expected ids (table_ids).
	IDs []string `yaml:"ids,omitempty"`

	// Reason and Ref describe the expected diagnostic (unresolved).
	Reason string   `yaml:"reason,omitempty"`
	Ref    *RefSpec `yaml:"ref,omitempty"`

	// Step is the index of the step under test (store_unchanged, store_changed).
	Step *int `yaml:"step,omitempty"`
}

// RefSpec is a reference written out in a scenario.
type RefSpec struct {
	Table string `yaml:"table"`
	ID    string `yaml:"id"`
}

// Assertion type constants.
const (
	AssertResolvesTo     = "resolves_to"
	AssertUnresolved     = "unresolved"
	AssertRecord         = "record"
	AssertTableIDs       = "table_ids"
	AssertNotFound       = "not_found"
	AssertStoreUnchanged = "store_unchanged"
	AssertStoreChanged   = "store_changed"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}

	switch s.IDs {
	case "", IDsKey, IDsSequence:
	default:
		return fmt.Errorf("ids must be %q or %q, got %q", IDsKey, IDsSequence, s.IDs)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], len(s.Steps)); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its operation.
func validateStep(index int, st *Step) error {
	if st.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if st.Table == "" {
		return fmt.Errorf("steps[%d]: table is required", index)
	}

	switch st.Op {
	case OpAddOne, OpSetOne, OpUpsertOne:
		if st.Record == nil {
			return fmt.Errorf("steps[%d]: record is required for %s", index, st.Op)
		}
		if st.Record.ID == "" {
			return fmt.Errorf("steps[%d]: record.id is required", index)
		}
	case OpAddMany, OpSetMany, OpUpsertMany:
		if len(st.Records) == 0 {
			return fmt.Errorf("steps[%d]: records list is required for %s", index, st.Op)
		}
		for j, rec := range st.Records {
			if rec.ID == "" {
				return fmt.Errorf("steps[%d]: records[%d].id is required", index, j)
			}
		}
	case OpSetAll:
		for j, rec := range st.Records {
			if rec.ID == "" {
				return fmt.Errorf("steps[%d]: records[%d].id is required", index, j)
			}
		}
	case OpUpdateOne:
		if st.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for update_one", index)
		}
		if st.Changes == nil {
			return fmt.Errorf("steps[%d]: changes is required for update_one", index)
		}
	case OpUpdateMany:
		if len(st.Updates) == 0 {
			return fmt.Errorf("steps[%d]: updates list is required for update_many", index)
		}
	case OpRemoveOne:
		if st.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for remove_one", index)
		}
	case OpRemoveMany:
		if len(st.IDs) == 0 {
			return fmt.Errorf("steps[%d]: ids list is required for remove_many", index)
		}
	case OpRemoveAll, OpCreate:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResolvesTo, AssertRecord:
		if a.Table == "" || a.ID == "" {
			return fmt.Errorf("assertions[%d]: table and id are required for %s", index, a.Type)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertUnresolved:
		if a.Table == "" || a.ID == "" {
			return fmt.Errorf("assertions[%d]: table and id are required for unresolved", index)
		}
		if a.Reason == "" {
			return fmt.Errorf("assertions[%d]: reason is required for unresolved", index)
		}
		if a.Ref == nil {
			return fmt.Errorf("assertions[%d]: ref is required for unresolved", index)
		}
	case AssertTableIDs:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for table_ids", index)
		}
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids is required for table_ids (use [] for an empty table)", index)
		}
	case AssertNotFound:
		if a.Table == "" || a.ID == "" {
			return fmt.Errorf("assertions[%d]: table and id are required for not_found", index)
		}
	case AssertStoreUnchanged, AssertStoreChanged:
		if a.Step == nil {
			return fmt.Errorf("assertions[%d]: step is required for %s", index, a.Type)
		}
		if *a.Step < 0 || *a.Step >= steps {
			return fmt.Errorf("assertions[%d]: step %d out of range (scenario has %d steps)", index, *a.Step, steps)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
