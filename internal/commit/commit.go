// Package commit implements the structural update operations over a store.
//
// Every operation takes a store and returns a store. The input is never
// modified. When an operation changes nothing, the input store itself is
// returned, so callers can detect "no change" by pointer comparison. Tables
// an operation does not touch are shared between input and output.
//
// Operations are total: absent ids and unknown tables degrade to no-ops.
package commit

import (
	"log/slog"

	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/store"
)

// Update is a partial change to one record. Changes address the record's
// fields: "label" (a string) and "data" (an object merged into the existing
// data). Other keys, including "id", are ignored.
type Update struct {
	ID      string
	Changes ir.Object
}

// Committer applies commit operations. The zero value is not usable; call New.
//
// Thread-safety: Committer holds no mutable state and is safe for concurrent use.
type Committer struct {
	logger *slog.Logger
}

// Option configures a Committer.
type Option func(*Committer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Committer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Committer.
func New(opts ...Option) *Committer {
	c := &Committer{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// table returns the named table, logging when it does not exist.
func (c *Committer) table(s *store.Store, name, op string) (*store.Table, bool) {
	t, ok := s.Table(name)
	if !ok {
		c.logger.Warn("commit to unknown table ignored", "op", op, "table", name)
	}
	return t, ok
}

// AddOne inserts rec unless its id is already present.
func (c *Committer) AddOne(s *store.Store, table string, rec ir.Record) *store.Store {
	return c.AddMany(s, table, []ir.Record{rec})
}

// AddMany inserts every record whose id is absent, in order. Present ids are
// skipped one by one; within recs the first record for an id wins.
func (c *Committer) AddMany(s *store.Store, table string, recs []ir.Record) *store.Store {
	t, ok := c.table(s, table, "addMany")
	if !ok {
		return s
	}
	var e *store.Edit
	for _, rec := range recs {
		if t.Has(rec.ID) || (e != nil && e.Has(rec.ID)) {
			continue
		}
		if e == nil {
			e = t.Edit()
		}
		e.Put(rec)
	}
	if e == nil {
		return s
	}
	return s.WithTable(table, e.Table())
}

// SetOne inserts rec, or replaces the record with its id entirely.
func (c *Committer) SetOne(s *store.Store, table string, rec ir.Record) *store.Store {
	return c.setMany(s, table, recsOf(rec), "setOne")
}

// SetMany applies SetOne for each record in order.
func (c *Committer) SetMany(s *store.Store, table string, recs []ir.Record) *store.Store {
	return c.setMany(s, table, recs, "setMany")
}

// UpsertOne inserts rec or replaces its label and data. Since rec is always
// a complete record this is the same operation as SetOne.
func (c *Committer) UpsertOne(s *store.Store, table string, rec ir.Record) *store.Store {
	return c.setMany(s, table, recsOf(rec), "upsertOne")
}

// UpsertMany applies UpsertOne for each record in order.
func (c *Committer) UpsertMany(s *store.Store, table string, recs []ir.Record) *store.Store {
	return c.setMany(s, table, recs, "upsertMany")
}

func (c *Committer) setMany(s *store.Store, table string, recs []ir.Record, op string) *store.Store {
	t, ok := c.table(s, table, op)
	if !ok {
		return s
	}
	var e *store.Edit
	for _, rec := range recs {
		current, present := t.Get(rec.ID)
		if e != nil {
			current, present = e.Get(rec.ID)
		}
		if present && ir.RecordsEqual(current, rec) {
			continue
		}
		if e == nil {
			e = t.Edit()
		}
		e.Put(rec)
	}
	if e == nil {
		return s
	}
	return s.WithTable(table, e.Table())
}

// SetAll replaces the table's content and order with recs. It always returns
// a new store.
func (c *Committer) SetAll(s *store.Store, table string, recs []ir.Record) *store.Store {
	if _, ok := c.table(s, table, "setAll"); !ok {
		return s
	}
	return s.WithTable(table, store.NewTable(recs...))
}

// UpdateOne merges u.Changes into the record u.ID. An absent id is a no-op.
func (c *Committer) UpdateOne(s *store.Store, table string, u Update) *store.Store {
	return c.updateMany(s, table, []Update{u}, "updateOne")
}

// UpdateMany applies UpdateOne for each update in order.
func (c *Committer) UpdateMany(s *store.Store, table string, updates []Update) *store.Store {
	return c.updateMany(s, table, updates, "updateMany")
}

func (c *Committer) updateMany(s *store.Store, table string, updates []Update, op string) *store.Store {
	t, ok := c.table(s, table, op)
	if !ok {
		return s
	}
	var e *store.Edit
	for _, u := range updates {
		current, present := t.Get(u.ID)
		if e != nil {
			current, present = e.Get(u.ID)
		}
		if !present {
			continue
		}
		next, changed := c.applyUpdate(table, current, u.Changes)
		if !changed {
			continue
		}
		if e == nil {
			e = t.Edit()
		}
		e.Put(next)
	}
	if e == nil {
		return s
	}
	return s.WithTable(table, e.Table())
}

// applyUpdate merges changes into the record fields label and data.
func (c *Committer) applyUpdate(table string, rec ir.Record, changes ir.Object) (ir.Record, bool) {
	changed := false
	for _, k := range changes.SortedKeys() {
		switch k {
		case ir.FieldLabel:
			label, ok := changes[k].(ir.String)
			if !ok {
				c.logger.Warn("non-string label change ignored", "table", table, "id", rec.ID)
				continue
			}
			if string(label) != rec.Label {
				rec.Label = string(label)
				changed = true
			}
		case ir.FieldData:
			patch, ok := changes[k].(ir.Object)
			if !ok {
				c.logger.Warn("non-object data change ignored", "table", table, "id", rec.ID)
				continue
			}
			base := rec.Data
			if base == nil {
				base = ir.Object{}
			}
			if merged, ok := Merge(base, patch); ok {
				rec.Data = merged
				changed = true
			}
		case ir.FieldID:
			// ids are immutable
		default:
			c.logger.Debug("unknown record field in update ignored", "table", table, "id", rec.ID, "field", k)
		}
	}
	return rec, changed
}

// RemoveOne deletes the record id. An absent id is a no-op.
func (c *Committer) RemoveOne(s *store.Store, table, id string) *store.Store {
	return c.removeMany(s, table, []string{id}, "removeOne")
}

// RemoveMany deletes every present id; absent ids are ignored.
func (c *Committer) RemoveMany(s *store.Store, table string, ids []string) *store.Store {
	return c.removeMany(s, table, ids, "removeMany")
}

func (c *Committer) removeMany(s *store.Store, table string, ids []string, op string) *store.Store {
	t, ok := c.table(s, table, op)
	if !ok {
		return s
	}
	var e *store.Edit
	for _, id := range ids {
		if !t.Has(id) {
			continue
		}
		if e == nil {
			e = t.Edit()
		}
		e.Delete(id)
	}
	if e == nil {
		return s
	}
	return s.WithTable(table, e.Table())
}

// RemoveAll empties the table. It always returns a new store.
func (c *Committer) RemoveAll(s *store.Store, table string) *store.Store {
	if _, ok := c.table(s, table, "removeAll"); !ok {
		return s
	}
	return s.WithTable(table, store.EmptyTable())
}

func recsOf(rec ir.Record) []ir.Record {
	return []ir.Record{rec}
}
