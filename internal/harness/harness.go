package harness

import (
	"fmt"
	"log/slog"

	"github.com/relatixjs/relatix"
	"github.com/relatixjs/relatix/internal/commit"
	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/population"
	"github.com/relatixjs/relatix/internal/resolve"
	"github.com/relatixjs/relatix/internal/store"
	"github.com/relatixjs/relatix/internal/testutil"
)

// Harness is the test execution engine for one scenario run.
type Harness struct {
	model *relatix.Model

	// states[0] is the materialized store; states[i+1] is the store
	// returned by step i.
	states []*store.Store

	diags  *diagnostics
	logger *slog.Logger
}

// diagnostics collects the unresolved references reported by the model.
type diagnostics struct {
	seen []resolve.UnresolvedReference
}

func (d *diagnostics) record(u resolve.UnresolvedReference) {
	d.seen = append(d.seen, u)
}

func (d *diagnostics) reset() {
	d.seen = nil
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Compile the CUE schema and read the population against it
// 2. Materialize the model with deterministic ids
// 3. Apply the steps in order, tracing each
// 4. Evaluate assertions against the recorded stores
//
// An error is returned when the scenario cannot be executed; failed
// assertions are reported in Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	logger := testutil.DiscardLogger()
	diags := &diagnostics{}

	opts := []relatix.Option{
		relatix.WithLogger(logger),
		relatix.WithDiagnostics(diags.record),
	}
	if scenario.IDs == IDsSequence {
		opts = append(opts, relatix.WithSequentialIDs("id"))
	} else {
		opts = append(opts, relatix.WithKeyIDs())
	}
	if scenario.MaxDepth != nil {
		opts = append(opts, relatix.WithMaxDepth(*scenario.MaxDepth))
	}

	b := relatix.Tables(opts...).AddCUE([]byte(scenario.Schema), scenario.Name+".cue")
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	pop := population.New()
	if scenario.Population.Kind != 0 {
		p, err := population.FromNode(&scenario.Population, b.Schema())
		if err != nil {
			return nil, fmt.Errorf("failed to load population: %w", err)
		}
		pop = p
	}

	model, err := b.Populate(pop).Done()
	if err != nil {
		return nil, fmt.Errorf("failed to materialize: %w", err)
	}

	h := &Harness{
		model:  model,
		states: []*store.Store{model.Tables()},
		diags:  diags,
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(step, result); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
	}
	result.Store = h.current()

	for _, msg := range h.evaluateAssertions(scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) current() *store.Store {
	return h.states[len(h.states)-1]
}

// executeStep applies one step to the current store and traces it.
func (h *Harness) executeStep(step Step, result *Result) error {
	before := h.current()
	tc := h.model.Commit(step.Table)

	var after *store.Store
	switch step.Op {
	case OpAddOne, OpSetOne, OpUpsertOne:
		rec, err := convertRecord(*step.Record)
		if err != nil {
			return err
		}
		switch step.Op {
		case OpAddOne:
			after = tc.AddOne(before, rec)
		case OpSetOne:
			after = tc.SetOne(before, rec)
		default:
			after = tc.UpsertOne(before, rec)
		}
	case OpAddMany, OpSetMany, OpUpsertMany, OpSetAll:
		recs, err := convertRecords(step.Records)
		if err != nil {
			return err
		}
		switch step.Op {
		case OpAddMany:
			after = tc.AddMany(before, recs)
		case OpSetMany:
			after = tc.SetMany(before, recs)
		case OpUpsertMany:
			after = tc.UpsertMany(before, recs)
		default:
			after = tc.SetAll(before, recs)
		}
	case OpUpdateOne:
		changes, err := convertObject(step.Changes)
		if err != nil {
			return fmt.Errorf("changes: %w", err)
		}
		after = tc.UpdateOne(before, commit.Update{ID: step.ID, Changes: changes})
	case OpUpdateMany:
		updates := make([]commit.Update, len(step.Updates))
		for i, u := range step.Updates {
			changes, err := convertObject(u.Changes)
			if err != nil {
				return fmt.Errorf("updates[%d].changes: %w", i, err)
			}
			updates[i] = commit.Update{ID: u.ID, Changes: changes}
		}
		after = tc.UpdateMany(before, updates)
	case OpRemoveOne:
		after = tc.RemoveOne(before, step.ID)
	case OpRemoveMany:
		after = tc.RemoveMany(before, step.IDs)
	case OpRemoveAll:
		after = tc.RemoveAll(before)
	case OpCreate:
		rec, err := h.create(step)
		if err != nil {
			return err
		}
		after = tc.AddOne(before, rec)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	h.states = append(h.states, after)
	result.AddStepTrace(step.Op, step.Table, after != before, h.model.Select(step.Table).IDs(after))

	h.logger.Debug("step applied",
		"op", step.Op,
		"table", step.Table,
		"changed", after != before)

	return nil
}

// create builds a standalone record through the model.
func (h *Harness) create(step Step) (ir.Record, error) {
	data, err := convertObject(step.Data)
	if err != nil {
		return ir.Record{}, fmt.Errorf("data: %w", err)
	}

	var opts []relatix.CreateOption
	if step.ID != "" {
		opts = append(opts, relatix.WithID(step.ID))
	}
	if step.Label != "" {
		opts = append(opts, relatix.WithLabel(step.Label))
	}

	return h.model.Create(step.Table, func(relatix.Refs) ir.Object { return data }, opts...)
}

// convertRecord converts a scenario record into an ir.Record.
func convertRecord(spec RecordSpec) (ir.Record, error) {
	data, err := convertObject(spec.Data)
	if err != nil {
		return ir.Record{}, fmt.Errorf("record %q: %w", spec.ID, err)
	}
	return ir.Record{ID: spec.ID, Label: spec.Label, Data: data}, nil
}

func convertRecords(specs []RecordSpec) ([]ir.Record, error) {
	recs := make([]ir.Record, len(specs))
	for i, spec := range specs {
		rec, err := convertRecord(spec)
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}
	return recs, nil
}

// convertObject converts YAML-decoded data into an ir.Object, detecting
// references by their {table, id} shape. A nil map becomes an empty Object.
func convertObject(m map[string]any) (ir.Object, error) {
	if m == nil {
		return ir.Object{}, nil
	}
	return ir.ObjectFromGo(m)
}
