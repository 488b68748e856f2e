// Package population holds the symbolic seed data of a model: for each table,
// an ordered set of population keys and the field data of each key.
//
// Reference fields are written with Ref, which names the target by its
// population key. Keys are replaced by generated record ids at
// materialization and never reach the store.
package population

import (
	"github.com/relatixjs/relatix/internal/ir"
)

// Entry is the field data of one population key.
type Entry struct {
	Key  string
	Data ir.Object
}

// Population is table -> key -> fields, ordered by first insertion at both
// levels. The zero value is not usable; call New.
type Population struct {
	tables  []string
	entries map[string][]Entry
	index   map[string]map[string]int
}

// New creates an empty population.
func New() *Population {
	return &Population{
		entries: make(map[string][]Entry),
		index:   make(map[string]map[string]int),
	}
}

// Add records the field data for key in table and returns p for chaining.
// Adding a key twice replaces its data and keeps its original position.
func (p *Population) Add(table, key string, data ir.Object) *Population {
	if data == nil {
		data = ir.Object{}
	}
	keys, ok := p.index[table]
	if !ok {
		keys = make(map[string]int)
		p.index[table] = keys
		p.tables = append(p.tables, table)
	}
	if i, dup := keys[key]; dup {
		p.entries[table][i].Data = data
		return p
	}
	keys[key] = len(p.entries[table])
	p.entries[table] = append(p.entries[table], Entry{Key: key, Data: data})
	return p
}

// Tables returns populated table names in insertion order.
func (p *Population) Tables() []string {
	return append([]string(nil), p.tables...)
}

// Entries returns the entries of table in insertion order.
func (p *Population) Entries(table string) []Entry {
	return p.entries[table]
}

// Has reports whether key is populated in table.
func (p *Population) Has(table, key string) bool {
	_, ok := p.index[table][key]
	return ok
}

// Len returns the number of entries across all tables.
func (p *Population) Len() int {
	n := 0
	for _, e := range p.entries {
		n += len(e)
	}
	return n
}

// Ref is the symbolic reference constructor: it names the record populated
// under key in table.
func Ref(table, key string) ir.SymbolicRef {
	return ir.SymbolicRef{Table: table, Key: key}
}

// Refs builds a sequence of symbolic references into one table.
func Refs(table string, keys ...string) ir.Array {
	arr := make(ir.Array, len(keys))
	for i, k := range keys {
		arr[i] = Ref(table, k)
	}
	return arr
}
