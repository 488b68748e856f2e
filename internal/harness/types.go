package harness

import (
	"github.com/relatixjs/relatix/internal/store"
)

// StepTrace records what one step did.
type StepTrace struct {
	Op    string `json:"op"`
	Table string `json:"table"`

	// Changed is false when the step returned its input store.
	Changed bool `json:"changed"`

	// IDs are the ids of Table after the step.
	IDs []string `json:"ids"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Trace has one entry per step, in order.
	Trace []StepTrace `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Store is the store after the last step.
	Store *store.Store `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace appends the trace of one step.
func (r *Result) AddStepTrace(op, table string, changed bool, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	r.Trace = append(r.Trace, StepTrace{
		Op:      op,
		Table:   table,
		Changed: changed,
		IDs:     ids,
	})
}
