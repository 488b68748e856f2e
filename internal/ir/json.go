package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON implements json.Marshaler for Object using canonical encoding.
func (obj Object) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(obj)
}

// MarshalJSON implements json.Marshaler for Array using canonical encoding.
func (arr Array) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(arr)
}

// UnmarshalJSON implements json.Unmarshaler for Object. Nested values go
// through structural detection; the top-level object itself stays an Object.
// JSON null leaves obj nil.
func (obj *Object) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	if raw == nil {
		*obj = nil
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", raw)
	}
	out, err := convertJSONObject(m)
	if err != nil {
		return err
	}
	*obj = out
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (arr *Array) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	list, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("expected JSON array, got %T", raw)
	}
	out := make(Array, len(list))
	for i, elem := range list {
		v, err := convertJSON(elem)
		if err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
		out[i] = v
	}
	*arr = out
	return nil
}

// UnmarshalValue decodes JSON into a Value, detecting references and wrapped
// records structurally. Integers become Int, other numbers Float.
func UnmarshalValue(data []byte) (Value, error) {
	raw, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return convertJSON(raw)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func convertJSON(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return convertNumber(val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := convertJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj, err := convertJSONObject(val)
		if err != nil {
			return nil, err
		}
		return Detect(obj), nil
	default:
		return nil, fmt.Errorf("unsupported JSON type: %T", v)
	}
}

func convertJSONObject(m map[string]any) (Object, error) {
	obj := make(Object, len(m))
	for k, elem := range m {
		conv, err := convertJSON(elem)
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		obj[k] = conv
	}
	return obj, nil
}

func convertNumber(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", s, err)
	}
	return Float(f), nil
}
