package selector

import (
	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/resolve"
	"github.com/relatixjs/relatix/internal/store"
)

type deepKey struct {
	store *store.Store
	depth int
}

type deepIDKey struct {
	store *store.Store
	id    string
	depth int
}

type deepLookup struct {
	val ir.Value
	err error
}

// Deep selects resolved records of one table. Results depend on every table,
// so they are keyed by store.
//
// Thread-safety: safe for concurrent use if the resolver is.
type Deep struct {
	table    string
	resolver *resolve.Resolver
	byID     memo[deepIDKey, deepLookup]
	all      memo[deepKey, []ir.Value]
	entities memo[deepKey, map[string]ir.Value]
}

// NewDeep creates the deep selectors of table.
func NewDeep(table string, r *resolve.Resolver) *Deep {
	return &Deep{table: table, resolver: r}
}

// DefaultDepth returns the depth of the underlying resolver.
func (sel *Deep) DefaultDepth() int {
	return sel.resolver.MaxDepth()
}

func (sel *Deep) lookup(s *store.Store, id string, depth int) deepLookup {
	return sel.byID.get(deepIDKey{store: s, id: id, depth: depth}, func() deepLookup {
		v, err := sel.resolver.ResolveDepth(s, sel.table, id, depth)
		return deepLookup{val: v, err: err}
	})
}

// ByID returns the resolved data of record id, or nil when it is absent.
func (sel *Deep) ByID(s *store.Store, id string, depth int) ir.Value {
	return sel.lookup(s, id, depth).val
}

// ByIDExn is ByID with a *store.NotFoundError for an absent id.
func (sel *Deep) ByIDExn(s *store.Store, id string, depth int) (ir.Value, error) {
	res := sel.lookup(s, id, depth)
	return res.val, res.err
}

// All resolves every record in table order.
func (sel *Deep) All(s *store.Store, depth int) []ir.Value {
	return sel.all.get(deepKey{store: s, depth: depth}, func() []ir.Value {
		out := sel.resolver.All(s, sel.table, depth)
		if out == nil {
			out = []ir.Value{}
		}
		return out
	})
}

// Entities resolves every record keyed by id.
func (sel *Deep) Entities(s *store.Store, depth int) map[string]ir.Value {
	return sel.entities.get(deepKey{store: s, depth: depth}, func() map[string]ir.Value {
		out := sel.resolver.Entities(s, sel.table, depth)
		if out == nil {
			out = map[string]ir.Value{}
		}
		return out
	})
}
