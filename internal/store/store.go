package store

import (
	"github.com/relatixjs/relatix/internal/ir"
)

// Store is an immutable snapshot mapping table names to tables. Table order
// is the order tables were declared in.
type Store struct {
	order  []string
	tables map[string]*Table
}

// New creates a store with an empty table for each name.
// Repeated names are ignored.
func New(tables ...string) *Store {
	s := &Store{tables: make(map[string]*Table, len(tables))}
	for _, name := range tables {
		if _, dup := s.tables[name]; dup {
			continue
		}
		s.order = append(s.order, name)
		s.tables[name] = EmptyTable()
	}
	return s
}

// Tables returns table names in declaration order.
func (s *Store) Tables() []string {
	return append([]string(nil), s.order...)
}

// Has reports whether the store has a table called name.
func (s *Store) Has(name string) bool {
	_, ok := s.tables[name]
	return ok
}

// Table returns the named table.
func (s *Store) Table(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// WithTable returns a new store in which name maps to t. Every other table is
// shared with s. A new name is appended to the table order.
func (s *Store) WithTable(name string, t *Table) *Store {
	out := &Store{
		order:  s.order,
		tables: make(map[string]*Table, len(s.tables)+1),
	}
	for n, tbl := range s.tables {
		out.tables[n] = tbl
	}
	if _, ok := s.tables[name]; !ok {
		out.order = append(append([]string(nil), s.order...), name)
	}
	out.tables[name] = t
	return out
}

// Get returns the record id of table.
func (s *Store) Get(table, id string) (ir.Record, bool) {
	t, ok := s.tables[table]
	if !ok {
		return ir.Record{}, false
	}
	return t.Get(id)
}

// Lookup is like Get but returns a NotFoundError when the table or record is
// absent.
func (s *Store) Lookup(table, id string) (ir.Record, error) {
	rec, ok := s.Get(table, id)
	if !ok {
		return ir.Record{}, &NotFoundError{Table: table, ID: id}
	}
	return rec, nil
}

// Len returns the total number of records across all tables.
func (s *Store) Len() int {
	n := 0
	for _, t := range s.tables {
		n += t.Len()
	}
	return n
}
