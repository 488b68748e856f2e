// Package resolve expands references in record data into the data of the
// records they point to.
//
// Depth counts resolved hops, not nesting: following a reference or
// unwrapping a record costs one unit, arrays and nested objects are free.
// The root record is handed to the walk wrapped, so unwrapping it costs the
// first unit. At depth 0 the root data comes back untouched; at depth 1 its
// direct references are expanded; and so on. Once the budget goes negative
// the remaining value is returned as is.
//
// A reference into the table currently being walked is never followed. Such
// edges are the only ones that can loop on themselves, so they always come
// back as raw references. A reference whose target is missing also comes
// back raw. Both cases are reported as UnresolvedReference diagnostics and
// never fail the call; only a missing root record is an error.
package resolve

import (
	"log/slog"

	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/store"
)

// DefaultMaxDepth is the depth used when none is configured.
const DefaultMaxDepth = 10

// Reason says why a reference was left unresolved.
type Reason string

const (
	// ReasonSameTable marks a reference into the table being walked.
	ReasonSameTable Reason = "same_table"

	// ReasonMissingTarget marks a reference whose table or record is absent.
	ReasonMissingTarget Reason = "missing_target"
)

// UnresolvedReference is the diagnostic emitted for a reference that was
// returned raw. From is the table whose data held the reference.
type UnresolvedReference struct {
	Ref    ir.Ref
	From   string
	Reason Reason
}

// Resolver performs deep resolution over store snapshots.
//
// Thread-safety: a Resolver is safe for concurrent use if its diagnostics
// callback is.
type Resolver struct {
	logger   *slog.Logger
	report   func(UnresolvedReference)
	maxDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDiagnostics registers a callback for every unresolved reference.
func WithDiagnostics(fn func(UnresolvedReference)) Option {
	return func(r *Resolver) {
		r.report = fn
	}
}

// WithMaxDepth sets the depth used by Resolve, All and Entities.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		r.maxDepth = depth
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxDepth returns the configured default depth.
func (r *Resolver) MaxDepth() int {
	return r.maxDepth
}

// Resolve returns the resolved data of record id in table using the default
// depth. A missing root record is a *store.NotFoundError.
func (r *Resolver) Resolve(s *store.Store, table, id string) (ir.Value, error) {
	return r.ResolveDepth(s, table, id, r.maxDepth)
}

// ResolveDepth is Resolve with an explicit depth. A negative depth returns
// the root record itself as an ir.Record.
func (r *Resolver) ResolveDepth(s *store.Store, table, id string, depth int) (ir.Value, error) {
	rec, err := s.Lookup(table, id)
	if err != nil {
		return nil, err
	}
	return r.walk(s, rec, table, depth), nil
}

// All resolves every record of table in order. A missing table yields nil.
func (r *Resolver) All(s *store.Store, table string, depth int) []ir.Value {
	t, ok := s.Table(table)
	if !ok {
		return nil
	}
	recs := t.Records()
	out := make([]ir.Value, len(recs))
	for i, rec := range recs {
		out[i] = r.walk(s, rec, table, depth)
	}
	return out
}

// Entities resolves every record of table, keyed by id.
func (r *Resolver) Entities(s *store.Store, table string, depth int) map[string]ir.Value {
	t, ok := s.Table(table)
	if !ok {
		return nil
	}
	out := make(map[string]ir.Value, t.Len())
	for _, rec := range t.Records() {
		out[rec.ID] = r.walk(s, rec, table, depth)
	}
	return out
}

// Value resolves an arbitrary value as if it were found in the data of a
// record of table.
func (r *Resolver) Value(s *store.Store, table string, v ir.Value, depth int) ir.Value {
	return r.walk(s, v, table, depth)
}

func (r *Resolver) walk(s *store.Store, v ir.Value, table string, depth int) ir.Value {
	if depth < 0 {
		return v
	}

	switch val := v.(type) {
	case ir.Ref:
		if val.Table == table {
			r.unresolved(UnresolvedReference{Ref: val, From: table, Reason: ReasonSameTable})
			return val
		}
		target, ok := s.Get(val.Table, val.ID)
		if !ok {
			r.unresolved(UnresolvedReference{Ref: val, From: table, Reason: ReasonMissingTarget})
			return val
		}
		return r.walk(s, target.Data, val.Table, depth-1)
	case ir.Record:
		return r.walk(s, val.Data, table, depth-1)
	case ir.Array:
		out := make(ir.Array, len(val))
		for i, elem := range val {
			out[i] = r.walk(s, elem, table, depth)
		}
		return out
	case ir.Object:
		out := make(ir.Object, len(val))
		for k, elem := range val {
			out[k] = r.walk(s, elem, table, depth)
		}
		return out
	default:
		return v
	}
}

func (r *Resolver) unresolved(u UnresolvedReference) {
	if u.Reason == ReasonMissingTarget {
		r.logger.Warn("could not resolve reference",
			"table", u.Ref.Table,
			"id", u.Ref.ID,
			"from", u.From)
	} else {
		r.logger.Debug("same-table reference left unresolved",
			"table", u.Ref.Table,
			"id", u.Ref.ID)
	}
	if r.report != nil {
		r.report(u)
	}
}
