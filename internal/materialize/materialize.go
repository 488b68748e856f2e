// Package materialize builds the initial store of a model from its schema and
// symbolic population data, and constructs standalone records afterwards.
package materialize

import (
	"fmt"

	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/population"
	"github.com/relatixjs/relatix/internal/schema"
	"github.com/relatixjs/relatix/internal/store"
)

// IDIndex maps table -> population key -> generated record id.
type IDIndex map[string]map[string]string

// ID returns the id generated for key in table.
func (ix IDIndex) ID(table, key string) (string, bool) {
	id, ok := ix[table][key]
	return id, ok
}

// Materialize builds a store from s and p.
//
// Every table of s gets a table in the store, populated or not. Ids are
// assigned to every population key first; then each entry's data is walked
// and every symbolic reference is rewritten to a reference carrying the
// target's generated id. Record order follows population order.
//
// A symbolic reference whose key is not populated in its target table is an
// error, as are population tables s does not declare and generated ids that
// are empty or repeat within a table.
func Materialize(s *schema.Schema, p *population.Population, opts ...Option) (*store.Store, IDIndex, error) {
	cfg := newConfig(opts)

	for _, table := range p.Tables() {
		if !s.Has(table) {
			return nil, nil, &Error{
				Code:    ErrCodeUnknownTable,
				Table:   table,
				Message: "population for a table the schema does not declare",
			}
		}
	}

	index, err := assignIDs(p, cfg)
	if err != nil {
		return nil, nil, err
	}

	st := store.New(s.Tables()...)
	records := 0
	for _, table := range p.Tables() {
		e := store.EmptyTable().Edit()
		for _, entry := range p.Entries(table) {
			w := rewriter{index: index, table: table, key: entry.Key}
			data, err := w.object(entry.Data, "")
			if err != nil {
				return nil, nil, err
			}
			e.Put(ir.Record{
				ID:    index[table][entry.Key],
				Label: cfg.labels(entry.Key),
				Data:  data,
			})
			records++
		}
		st = st.WithTable(table, e.Table())
	}

	cfg.logger.Debug("materialized store",
		"tables", len(st.Tables()),
		"records", records)

	return st, index, nil
}

// assignIDs is the first pass: one generated id per (table, key).
func assignIDs(p *population.Population, cfg config) (IDIndex, error) {
	index := make(IDIndex, len(p.Tables()))
	for _, table := range p.Tables() {
		entries := p.Entries(table)
		ids := make(map[string]string, len(entries))
		used := make(map[string]string, len(entries))
		for _, entry := range entries {
			id := cfg.ids.Generate(entry.Key)
			if id == "" {
				return nil, &Error{
					Code:    ErrCodeEmptyID,
					Table:   table,
					Key:     entry.Key,
					Message: "id generator returned an empty id",
				}
			}
			if other, dup := used[id]; dup {
				return nil, &Error{
					Code:    ErrCodeDuplicateID,
					Table:   table,
					Key:     entry.Key,
					Message: fmt.Sprintf("id %q already generated for key %q", id, other),
				}
			}
			used[id] = entry.Key
			ids[entry.Key] = id
		}
		index[table] = ids
	}
	return index, nil
}

// rewriter is the second pass over one population entry.
type rewriter struct {
	index IDIndex
	table string
	key   string
}

func (w rewriter) value(v ir.Value, path string) (ir.Value, error) {
	switch val := v.(type) {
	case ir.SymbolicRef:
		id, ok := w.index.ID(val.Table, val.Key)
		if !ok {
			return nil, &Error{
				Code:    ErrCodeDanglingRef,
				Table:   w.table,
				Key:     w.key,
				Field:   path,
				Message: fmt.Sprintf("reference to %s: key is not populated", val),
			}
		}
		return ir.NewRef(val.Table, id), nil
	case ir.Array:
		out := make(ir.Array, len(val))
		for i, elem := range val {
			conv, err := w.value(elem, path)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case ir.Object:
		return w.object(val, path)
	case ir.Record:
		data, err := w.object(val.Data, path)
		if err != nil {
			return nil, err
		}
		val.Data = data
		return val, nil
	default:
		return v, nil
	}
}

func (w rewriter) object(obj ir.Object, prefix string) (ir.Object, error) {
	out := make(ir.Object, len(obj))
	for _, k := range obj.SortedKeys() {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		conv, err := w.value(obj[k], path)
		if err != nil {
			return nil, err
		}
		out[k] = conv
	}
	return out, nil
}
