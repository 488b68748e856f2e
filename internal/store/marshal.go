package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/relatixjs/relatix/internal/ir"
)

// wireTable is one table in the persisted shape.
type wireTable struct {
	IDs      []string              `json:"ids" msgpack:"ids"`
	Entities map[string]wireRecord `json:"entities" msgpack:"entities"`
}

type wireRecord struct {
	ID    string    `json:"id" msgpack:"id"`
	Label string    `json:"label" msgpack:"label"`
	Data  ir.Object `json:"data" msgpack:"-"`

	// Plain is the msgpack form of Data.
	Plain map[string]any `json:"-" msgpack:"data"`
}

// Wire returns the store in its persisted shape as a value.
func (s *Store) Wire() ir.Object {
	out := make(ir.Object, len(s.tables))
	for name, t := range s.tables {
		ids := make(ir.Array, len(t.ids))
		entities := make(ir.Object, len(t.ids))
		for i, id := range t.ids {
			ids[i] = ir.String(id)
			entities[id] = t.entities[id].AsObject()
		}
		out[name] = ir.Object{"ids": ids, "entities": entities}
	}
	return out
}

// MarshalJSON writes the store as canonical JSON. Table order is not part of
// the encoding; tables come back sorted by name.
func (s *Store) MarshalJSON() ([]byte, error) {
	data, err := ir.MarshalCanonical(s.Wire())
	if err != nil {
		return nil, fmt.Errorf("marshal store: %w", err)
	}
	return data, nil
}

// UnmarshalJSON replaces s with the store encoded in data. References inside
// record data are detected structurally. Times, patterns and funcs do not
// survive the round trip: they come back as strings and nulls.
func (s *Store) UnmarshalJSON(data []byte) error {
	var wire map[string]wireTable
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return fmt.Errorf("unmarshal store: %w", err)
	}
	out, err := fromWire(wire)
	if err != nil {
		return err
	}
	*s = *out
	return nil
}

// MarshalMsgpack encodes the persisted shape as msgpack with sorted map keys.
// Times are kept as msgpack timestamps.
func (s *Store) MarshalMsgpack() ([]byte, error) {
	wire := make(map[string]wireTable, len(s.tables))
	for name, t := range s.tables {
		wt := wireTable{IDs: t.IDs(), Entities: make(map[string]wireRecord, len(t.ids))}
		for _, id := range t.ids {
			rec := t.entities[id]
			plain, err := ir.ToGo(rec.Data)
			if err != nil {
				return nil, fmt.Errorf("marshal store: %s/%s: %w", name, id, err)
			}
			data, _ := plain.(map[string]any)
			if data == nil {
				data = map[string]any{}
			}
			wt.Entities[id] = wireRecord{ID: rec.ID, Label: rec.Label, Plain: data}
		}
		wire[name] = wt
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("marshal store: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgpack replaces s with the store encoded in data.
func (s *Store) UnmarshalMsgpack(data []byte) error {
	var wire map[string]wireTable
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&wire); err != nil {
		return fmt.Errorf("unmarshal store: %w", err)
	}
	for name, wt := range wire {
		for id, wr := range wt.Entities {
			obj, err := ir.ObjectFromGo(wr.Plain)
			if err != nil {
				return fmt.Errorf("unmarshal store: %s/%s: %w", name, id, err)
			}
			wr.Data = obj
			wt.Entities[id] = wr
		}
	}
	out, err := fromWire(wire)
	if err != nil {
		return err
	}
	*s = *out
	return nil
}

// Digest is the SHA-256 content digest of the store's canonical encoding.
// Equal stores have equal digests regardless of table declaration order.
func (s *Store) Digest() (string, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	return ir.DigestBytes(ir.DomainStore, data), nil
}

// fromWire validates the persisted shape and builds a store. Tables are
// declared in name order.
func fromWire(wire map[string]wireTable) (*Store, error) {
	names := make(ir.Object, len(wire))
	for name := range wire {
		names[name] = ir.Null{}
	}

	s := New()
	for _, name := range names.SortedKeys() {
		wt := wire[name]
		if len(wt.IDs) != len(wt.Entities) {
			return nil, fmt.Errorf("unmarshal store: table %q: %d ids for %d entities", name, len(wt.IDs), len(wt.Entities))
		}
		e := EmptyTable().Edit()
		for _, id := range wt.IDs {
			wr, ok := wt.Entities[id]
			if !ok {
				return nil, fmt.Errorf("unmarshal store: table %q: id %q has no entity", name, id)
			}
			if e.Has(id) {
				return nil, fmt.Errorf("unmarshal store: table %q: id %q listed twice", name, id)
			}
			if wr.ID != id {
				return nil, fmt.Errorf("unmarshal store: table %q: entity %q carries id %q", name, id, wr.ID)
			}
			data := wr.Data
			if data == nil {
				data = ir.Object{}
			}
			e.Put(ir.Record{ID: id, Label: wr.Label, Data: data})
		}
		s = s.WithTable(name, e.Table())
	}
	return s, nil
}
