package ir

import "fmt"

// Ref points at the record with ID in table Table.
// Serialized as {"table": ..., "id": ...}.
type Ref struct {
	Table string `json:"table" msgpack:"table"`
	ID    string `json:"id" msgpack:"id"`
}

func (Ref) irValue() {}

// NewRef creates a Ref.
func NewRef(table, id string) Ref {
	return Ref{Table: table, ID: id}
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.Table, r.ID)
}

// SymbolicRef names a record by its population key instead of its id.
// Only valid inside population data; materialization rewrites every
// SymbolicRef into a Ref.
type SymbolicRef struct {
	Table string
	Key   string
}

func (SymbolicRef) irValue() {}

func (r SymbolicRef) String() string {
	return fmt.Sprintf("%s[%s]", r.Table, r.Key)
}

// Record is the normalized unit of storage. When a Record itself appears as a
// Value it is a wrapped record and classifies as KindRecord.
type Record struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Data  Object `json:"data"`
}

func (Record) irValue() {}

// Field names of a record as seen by updates and the wire shape.
const (
	FieldID    = "id"
	FieldLabel = "label"
	FieldData  = "data"
)

// AsObject returns the record as a field-set {id, label, data}.
func (r Record) AsObject() Object {
	data := r.Data
	if data == nil {
		data = Object{}
	}
	return Object{
		FieldID:    String(r.ID),
		FieldLabel: String(r.Label),
		FieldData:  data,
	}
}

// RecordFromObject is the inverse of AsObject. id is authoritative: an id
// field inside obj is ignored. A label that is not a string keeps fallback's
// label; data that is not an Object becomes an empty Object.
func RecordFromObject(id string, obj Object, fallback Record) Record {
	rec := Record{ID: id, Label: fallback.Label, Data: Object{}}
	if label, ok := obj[FieldLabel].(String); ok {
		rec.Label = string(label)
	}
	if data, ok := obj[FieldData].(Object); ok {
		rec.Data = data
	}
	return rec
}
