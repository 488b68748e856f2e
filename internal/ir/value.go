package ir

import (
	"regexp"
	"slices"
	"time"
	"unicode/utf16"
)

// Value is a sealed interface over everything that can appear in record data.
// Implemented by Null, String, Int, Float, Bool, Time, Pattern, Func, Ref,
// SymbolicRef, Record, Array and Object.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Kind is the structural category of a Value.
type Kind int

const (
	// KindScalar is an indivisible leaf (string, number, bool, null, date, pattern, callable).
	KindScalar Kind = iota
	// KindReference is an identifier-based pointer into a table.
	KindReference
	// KindRecord is a fetched record {id, label, data} found mid-traversal.
	KindRecord
	// KindSequence is an ordered list of values.
	KindSequence
	// KindStructured is a plain nested field-set.
	KindStructured
	// KindSymbolic is a population-time reference by population key.
	KindSymbolic
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindReference:
		return "reference"
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	case KindStructured:
		return "structured"
	case KindSymbolic:
		return "symbolic"
	default:
		return "unknown"
	}
}

// Classify returns the structural category of v.
// A nil Value classifies as a scalar (absent).
func Classify(v Value) Kind {
	switch v.(type) {
	case Ref:
		return KindReference
	case Record:
		return KindRecord
	case Array:
		return KindSequence
	case Object:
		return KindStructured
	case SymbolicRef:
		return KindSymbolic
	default:
		return KindScalar
	}
}

// Null represents an explicit null.
type Null struct{}

func (Null) irValue() {}

// String is a string leaf.
type String string

func (String) irValue() {}

// Int is an integer leaf.
type Int int64

func (Int) irValue() {}

// Float is a floating point leaf.
type Float float64

func (Float) irValue() {}

// Bool is a boolean leaf.
type Bool bool

func (Bool) irValue() {}

// Time is a date leaf.
type Time struct {
	time.Time
}

func (Time) irValue() {}

// Pattern is a regular expression leaf.
type Pattern struct {
	*regexp.Regexp
}

func (Pattern) irValue() {}

// Func is an opaque callable leaf. It is stored and returned as is and never
// invoked by the store.
type Func struct {
	Fn any
}

func (Func) irValue() {}

// Array is an ordered sequence of values.
type Array []Value

func (Array) irValue() {}

// Object is a plain nested field-set.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// NewTime wraps t as a Time value.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// NewPattern compiles expr into a Pattern value.
func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Regexp: re}, nil
}

// MustPattern is like NewPattern but panics on an invalid expression.
func MustPattern(expr string) Pattern {
	p, err := NewPattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// NewArray creates an Array from values.
func NewArray(vals ...Value) Array {
	return Array(vals)
}

// Pair is a key-value pair for Object construction.
type Pair struct {
	Key   string
	Value Value
}

// O is a shorthand for Pair.
// Example: NewObject(O("name", String("Alice")), O("age", Int(30)))
func O(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewObject creates an Object from key-value pairs.
func NewObject(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785. Go's string comparison uses UTF-8 which orders
// supplementary-plane characters differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	for i := 0; i < min(len(a16), len(b16)); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
