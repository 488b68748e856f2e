package store

import (
	"github.com/relatixjs/relatix/internal/ir"
)

// Table is an immutable ordered collection of records of one table.
type Table struct {
	ids      []string
	entities map[string]ir.Record
}

// EmptyTable returns a table with no records.
func EmptyTable() *Table {
	return &Table{entities: map[string]ir.Record{}}
}

// NewTable builds a table from records in order. When an id repeats, the
// last record wins and the id keeps its first position.
func NewTable(records ...ir.Record) *Table {
	e := EmptyTable().Edit()
	for _, rec := range records {
		e.Put(rec)
	}
	return e.Table()
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.ids)
}

// IDs returns a copy of the id order.
func (t *Table) IDs() []string {
	return append([]string(nil), t.ids...)
}

// Has reports whether id is present.
func (t *Table) Has(id string) bool {
	_, ok := t.entities[id]
	return ok
}

// Get returns the record with id.
func (t *Table) Get(id string) (ir.Record, bool) {
	rec, ok := t.entities[id]
	return rec, ok
}

// Records returns the records in id order.
func (t *Table) Records() []ir.Record {
	out := make([]ir.Record, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.entities[id]
	}
	return out
}

// Entities returns a copy of the id -> record map.
func (t *Table) Entities() map[string]ir.Record {
	out := make(map[string]ir.Record, len(t.entities))
	for id, rec := range t.entities {
		out[id] = rec
	}
	return out
}

// Edit starts a batch of changes against a private copy of t.
func (t *Table) Edit() *Edit {
	e := &Edit{
		ids:      make([]string, len(t.ids), len(t.ids)+1),
		pos:      make(map[string]int, len(t.ids)),
		entities: make(map[string]ir.Record, len(t.entities)),
	}
	copy(e.ids, t.ids)
	for i, id := range t.ids {
		e.pos[id] = i
		e.entities[id] = t.entities[id]
	}
	return e
}

// Edit accumulates changes to a table. It is not safe for concurrent use and
// must not be reused after Table is called.
type Edit struct {
	ids      []string
	pos      map[string]int
	entities map[string]ir.Record
	dead     map[int]bool
}

// Has reports whether id is present in the edited table.
func (e *Edit) Has(id string) bool {
	_, ok := e.entities[id]
	return ok
}

// Get returns the current record with id.
func (e *Edit) Get(id string) (ir.Record, bool) {
	rec, ok := e.entities[id]
	return rec, ok
}

// Put inserts rec at the end, or replaces the record with the same id in
// place.
func (e *Edit) Put(rec ir.Record) {
	if _, ok := e.entities[rec.ID]; !ok {
		e.pos[rec.ID] = len(e.ids)
		e.ids = append(e.ids, rec.ID)
	}
	e.entities[rec.ID] = rec
}

// Delete removes id and reports whether it was present.
func (e *Edit) Delete(id string) bool {
	i, ok := e.pos[id]
	if !ok {
		return false
	}
	if e.dead == nil {
		e.dead = make(map[int]bool)
	}
	e.dead[i] = true
	delete(e.pos, id)
	delete(e.entities, id)
	return true
}

// Table returns the edited table.
func (e *Edit) Table() *Table {
	ids := e.ids
	if len(e.dead) > 0 {
		ids = make([]string, 0, len(e.entities))
		for i, id := range e.ids {
			if !e.dead[i] {
				ids = append(ids, id)
			}
		}
	}
	return &Table{ids: ids, entities: e.entities}
}
