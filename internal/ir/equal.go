package ir

import "reflect"

// Equal reports whether a and b are structurally equal.
// Patterns compare by source. Funcs compare equal only when they are the same
// comparable value; closures are never equal to each other.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Time:
		bv, ok := b.(Time)
		return ok && av.Equal(bv.Time)
	case Pattern:
		bv, ok := b.(Pattern)
		if !ok {
			return false
		}
		if av.Regexp == nil || bv.Regexp == nil {
			return av.Regexp == bv.Regexp
		}
		return av.String() == bv.String()
	case Func:
		bv, ok := b.(Func)
		return ok && funcEqual(av.Fn, bv.Fn)
	case Ref:
		bv, ok := b.(Ref)
		return ok && av == bv
	case SymbolicRef:
		bv, ok := b.(SymbolicRef)
		return ok && av == bv
	case Record:
		bv, ok := b.(Record)
		return ok && av.ID == bv.ID && av.Label == bv.Label && Equal(av.Data, bv.Data)
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, present := bv[k]
			if !present || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// RecordsEqual reports whether two records are structurally equal.
func RecordsEqual(a, b Record) bool {
	return Equal(a, b)
}

func funcEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() || ta.Kind() == reflect.Func {
		return false
	}
	return a == b
}
