package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/resolve"
	"github.com/relatixjs/relatix/internal/store"
)

// AssertionError provides detailed information about assertion failures.
type AssertionError struct {
	Type     string
	Expected any
	Actual   any
	Message  string
}

func (e *AssertionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: expected %v, got %v", e.Type, e.Expected, e.Actual)
}

// evaluateAssertions evaluates all assertions in order.
// Returns a slice of error messages for failed assertions.
func (h *Harness) evaluateAssertions(assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertResolvesTo:
			err = h.assertResolvesTo(assertion)
		case AssertUnresolved:
			err = h.assertUnresolved(assertion)
		case AssertRecord:
			err = h.assertRecord(assertion)
		case AssertTableIDs:
			err = h.assertTableIDs(assertion)
		case AssertNotFound:
			err = h.assertNotFound(assertion)
		case AssertStoreUnchanged, AssertStoreChanged:
			err = h.assertStoreIdentity(assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s", i, err))
		}
	}

	return errors
}

func (h *Harness) depth(a Assertion) int {
	if a.Depth != nil {
		return *a.Depth
	}
	return h.model.DeepSelect(a.Table).DefaultDepth()
}

// assertResolvesTo deep-selects a record and compares the result.
func (h *Harness) assertResolvesTo(a Assertion) error {
	expected, err := ir.FromGo(a.Expect)
	if err != nil {
		return fmt.Errorf("invalid expect: %w", err)
	}

	actual, err := h.model.DeepSelect(a.Table).ByIDExn(h.current(), a.ID, h.depth(a))
	if err != nil {
		return err
	}

	if !ir.Equal(expected, actual) {
		return &AssertionError{
			Type:     AssertResolvesTo,
			Expected: canonicalString(expected),
			Actual:   canonicalString(actual),
		}
	}
	return nil
}

// assertUnresolved resolves a record and checks that the expected reference
// was reported. Resolution bypasses the selector cache so diagnostics fire
// on every evaluation.
func (h *Harness) assertUnresolved(a Assertion) error {
	h.diags.reset()
	if _, err := h.model.ResolveDepth(h.current(), a.Table, a.ID, h.depth(a)); err != nil {
		return err
	}

	want := ir.NewRef(a.Ref.Table, a.Ref.ID)
	for _, u := range h.diags.seen {
		if u.Ref == want && string(u.Reason) == a.Reason {
			return nil
		}
	}

	seen := make([]string, len(h.diags.seen))
	for i, u := range h.diags.seen {
		seen[i] = describeUnresolved(u)
	}
	return &AssertionError{
		Type:    AssertUnresolved,
		Message: fmt.Sprintf("expected %s (%s) to be reported, got [%s]", want, a.Reason, strings.Join(seen, ", ")),
	}
}

func describeUnresolved(u resolve.UnresolvedReference) string {
	return fmt.Sprintf("%s (%s)", u.Ref, u.Reason)
}

// assertRecord compares a stored record with expect {label, data}.
func (h *Harness) assertRecord(a Assertion) error {
	m, ok := a.Expect.(map[string]any)
	if !ok {
		return fmt.Errorf("expect must be a mapping with label and data, got %T", a.Expect)
	}
	obj, err := ir.ObjectFromGo(m)
	if err != nil {
		return fmt.Errorf("invalid expect: %w", err)
	}
	expected := ir.RecordFromObject(a.ID, obj, ir.Record{})

	actual, err := h.model.Select(a.Table).ByIDExn(h.current(), a.ID)
	if err != nil {
		return err
	}

	if !ir.RecordsEqual(expected, actual) {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: canonicalString(expected),
			Actual:   canonicalString(actual),
		}
	}
	return nil
}

// assertTableIDs compares the ids of a table, in order.
func (h *Harness) assertTableIDs(a Assertion) error {
	actual := h.model.Select(a.Table).IDs(h.current())
	if !slices.Equal(a.IDs, actual) {
		return &AssertionError{
			Type:     AssertTableIDs,
			Expected: a.IDs,
			Actual:   actual,
		}
	}
	return nil
}

// assertNotFound expects a record to be absent.
func (h *Harness) assertNotFound(a Assertion) error {
	_, err := h.model.Select(a.Table).ByIDExn(h.current(), a.ID)
	if err == nil {
		return &AssertionError{
			Type:    AssertNotFound,
			Message: fmt.Sprintf("%s/%s is present", a.Table, a.ID),
		}
	}
	if !store.IsNotFound(err) {
		return err
	}
	return nil
}

// assertStoreIdentity checks whether a step returned its input store.
func (h *Harness) assertStoreIdentity(a Assertion) error {
	step := *a.Step
	if step < 0 || step+1 >= len(h.states) {
		return fmt.Errorf("step %d out of range", step)
	}

	same := h.states[step] == h.states[step+1]
	wantSame := a.Type == AssertStoreUnchanged
	if same != wantSame {
		return &AssertionError{
			Type:     a.Type,
			Expected: describeIdentity(wantSame),
			Actual:   describeIdentity(same),
		}
	}
	return nil
}

func describeIdentity(same bool) string {
	if same {
		return "same store"
	}
	return "new store"
}

// canonicalString renders v for failure messages.
func canonicalString(v any) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
