package ir

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"time"
)

// FromGo converts raw Go data into a Value.
//
// Structural detection happens here and only here:
//   - a map with exactly the string keys "table" and "id" becomes a Ref
//   - a map with exactly "id", "label" and "data" (an object) becomes a Record
//   - other maps with string keys become Objects, slices become Arrays
//   - time.Time, *regexp.Regexp and funcs become Time, Pattern and Func leaves
//
// Values that already implement Value are returned unchanged.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint64:
		return fromUint(val)
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case time.Time:
		return NewTime(val), nil
	case *regexp.Regexp:
		if val == nil {
			return Null{}, nil
		}
		return Pattern{Regexp: val}, nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		return fromGoMap(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return Null{}, nil
		}
		return Func{Fn: v}, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Array{}, nil
		}
		arr := make(Array, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			conv, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return fromGoMap(m)
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

// MustFromGo is like FromGo but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFromGo(v any) Value {
	val, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return val
}

// ObjectFromGo converts a Go map into an Object.
func ObjectFromGo(m map[string]any) (Object, error) {
	obj := make(Object, len(m))
	for k, elem := range m {
		conv, err := FromGo(elem)
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		obj[k] = conv
	}
	return obj, nil
}

func fromGoMap(m map[string]any) (Value, error) {
	obj, err := ObjectFromGo(m)
	if err != nil {
		return nil, err
	}
	return Detect(obj), nil
}

// Detect applies structural detection to an already converted Object,
// returning a Ref or Record when the shape matches and obj otherwise.
func Detect(obj Object) Value {
	switch len(obj) {
	case 2:
		table, okTable := obj["table"].(String)
		id, okID := obj[FieldID].(String)
		if okTable && okID {
			return Ref{Table: string(table), ID: string(id)}
		}
	case 3:
		id, okID := obj[FieldID].(String)
		label, okLabel := obj[FieldLabel].(String)
		data, okData := obj[FieldData].(Object)
		if okID && okLabel && okData {
			return Record{ID: string(id), Label: string(label), Data: data}
		}
	}
	return obj
}

// ToGo converts v back into plain Go data: maps, slices, primitives and
// time.Time. References and wrapped records become maps of their wire fields,
// patterns become their source and funcs become nil. A SymbolicRef cannot
// leave population data and is an error.
func ToGo(v Value) (any, error) {
	switch val := v.(type) {
	case nil, Null, Func:
		return nil, nil
	case String:
		return string(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case Bool:
		return bool(val), nil
	case Time:
		return val.Time, nil
	case Pattern:
		if val.Regexp == nil {
			return nil, nil
		}
		return val.String(), nil
	case Ref:
		return map[string]any{"table": val.Table, FieldID: val.ID}, nil
	case SymbolicRef:
		return nil, fmt.Errorf("symbolic reference %s cannot be converted", val)
	case Record:
		return ToGo(val.AsObject())
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			conv, err := ToGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			conv, err := ToGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			out[k] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
