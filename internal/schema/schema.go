// Package schema describes the tables of a model and which of their fields
// hold references to which tables.
//
// The core only needs reference metadata: which field paths are references
// and to which table they point. Scalar field kinds are carried for
// documentation and for loaders that want to check population data.
//
// Self-reference is a schema-time marker only. Target Self resolves to the
// declaring table when the schema is built; at runtime there is exactly one
// reference kind.
package schema

import (
	"fmt"
	"strings"
)

// Self marks a reference field that points into its own table.
const Self = "self"

// FieldKind names the kind of value a field holds.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindInt     FieldKind = "int"
	KindFloat   FieldKind = "float"
	KindBool    FieldKind = "bool"
	KindTime    FieldKind = "time"
	KindPattern FieldKind = "pattern"
	KindFunc    FieldKind = "func"
	KindArray   FieldKind = "array"
	KindObject  FieldKind = "object"
	KindAny     FieldKind = "any"
	KindRef     FieldKind = "ref"
)

// Field describes one field of a table. Path is dot-separated for fields
// nested inside structured values ("address.owner").
type Field struct {
	Path   string    `json:"path"`
	Kind   FieldKind `json:"kind"`
	Target string    `json:"target,omitempty"` // referenced table, KindRef only
	Many   bool      `json:"many,omitempty"`   // list of references
}

// IsRef reports whether the field holds references.
func (f Field) IsRef() bool {
	return f.Kind == KindRef
}

// Scalar declares a plain field.
func Scalar(path string, kind FieldKind) Field {
	return Field{Path: path, Kind: kind}
}

// Ref declares a field holding one reference (or null) into target.
func Ref(path, target string) Field {
	return Field{Path: path, Kind: KindRef, Target: target}
}

// RefMany declares a field holding a list of references into target.
func RefMany(path, target string) Field {
	return Field{Path: path, Kind: KindRef, Target: target, Many: true}
}

// Table is the declaration of one table.
type Table struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// NewTable declares a table.
func NewTable(name string, fields ...Field) Table {
	return Table{Name: name, Fields: fields}
}

// Field returns the field declared at path.
func (t Table) Field(path string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

// RefFields returns the reference fields of the table in declaration order.
func (t Table) RefFields() []Field {
	var refs []Field
	for _, f := range t.Fields {
		if f.IsRef() {
			refs = append(refs, f)
		}
	}
	return refs
}

// Schema is an ordered set of table declarations. It is immutable.
type Schema struct {
	tables []Table
	index  map[string]int
}

// New builds and validates a schema.
//
// Validation:
//   - table names are non-empty and unique
//   - field paths are non-empty and unique within a table
//   - reference targets name a declared table (or Self)
func New(tables ...Table) (*Schema, error) {
	return (&Schema{index: map[string]int{}}).Extend(tables...)
}

// MustNew is like New but panics on error.
// Use only in tests or when the declaration is known to be valid.
func MustNew(tables ...Table) *Schema {
	s, err := New(tables...)
	if err != nil {
		panic(err)
	}
	return s
}

// Extend returns a new schema with tables appended. Tables added later may
// reference earlier ones and each other. Redeclaring a table is an error.
func (s *Schema) Extend(tables ...Table) (*Schema, error) {
	out := &Schema{
		tables: make([]Table, 0, len(s.tables)+len(tables)),
		index:  make(map[string]int, len(s.tables)+len(tables)),
	}
	for _, t := range s.tables {
		out.index[t.Name] = len(out.tables)
		out.tables = append(out.tables, t)
	}

	for _, t := range tables {
		if t.Name == "" {
			return nil, &Error{Field: "table", Message: "table name is required"}
		}
		if _, dup := out.index[t.Name]; dup {
			return nil, &Error{Field: "table." + t.Name, Message: "table declared twice"}
		}
		out.index[t.Name] = len(out.tables)
		out.tables = append(out.tables, resolveSelf(t))
	}

	for _, t := range out.tables {
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			where := fmt.Sprintf("table.%s.%s", t.Name, f.Path)
			if f.Path == "" || strings.HasPrefix(f.Path, ".") || strings.HasSuffix(f.Path, ".") {
				return nil, &Error{Field: "table." + t.Name, Message: fmt.Sprintf("invalid field path %q", f.Path)}
			}
			if seen[f.Path] {
				return nil, &Error{Field: where, Message: "field declared twice"}
			}
			seen[f.Path] = true
			if f.IsRef() {
				if _, ok := out.index[f.Target]; !ok {
					return nil, &Error{Field: where, Message: fmt.Sprintf("reference to unknown table %q", f.Target)}
				}
			}
		}
	}

	return out, nil
}

func resolveSelf(t Table) Table {
	fields := make([]Field, len(t.Fields))
	for i, f := range t.Fields {
		if f.IsRef() && f.Target == Self {
			f.Target = t.Name
		}
		fields[i] = f
	}
	return Table{Name: t.Name, Fields: fields}
}

// Tables returns table names in declaration order.
func (s *Schema) Tables() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names
}

// Table returns the declaration of the named table.
func (s *Schema) Table(name string) (Table, bool) {
	i, ok := s.index[name]
	if !ok {
		return Table{}, false
	}
	return s.tables[i], true
}

// Has reports whether the schema declares the named table.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// RefField returns the reference field of table at path, if any.
func (s *Schema) RefField(table, path string) (Field, bool) {
	t, ok := s.Table(table)
	if !ok {
		return Field{}, false
	}
	f, ok := t.Field(path)
	if !ok || !f.IsRef() {
		return Field{}, false
	}
	return f, true
}

// IsSelfRef reports whether f, declared on table, points back into table.
func IsSelfRef(table string, f Field) bool {
	return f.IsRef() && f.Target == table
}
