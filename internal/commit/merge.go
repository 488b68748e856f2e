package commit

import (
	"github.com/relatixjs/relatix/internal/ir"
)

// Merge applies changes to base and reports whether the result differs.
//
// For each key of changes: an Object change is merged recursively into the
// existing value, which is first replaced by an empty Object when it is not
// one. Any other change (reference, array, scalar, null) replaces the existing
// value wholesale.
//
// Neither argument is modified. When nothing changes, base itself is
// returned.
func Merge(base, changes ir.Object) (ir.Object, bool) {
	var out ir.Object
	for _, k := range changes.SortedKeys() {
		next, changed := mergeValue(base, k, changes[k])
		if !changed {
			continue
		}
		if out == nil {
			out = make(ir.Object, len(base)+1)
			for bk, bv := range base {
				out[bk] = bv
			}
		}
		out[k] = next
	}
	if out == nil {
		return base, false
	}
	return out, true
}

func mergeValue(base ir.Object, key string, change ir.Value) (ir.Value, bool) {
	old, had := base[key]

	if patch, ok := change.(ir.Object); ok {
		existing, isObj := old.(ir.Object)
		if !isObj {
			existing = ir.Object{}
		}
		merged, changed := Merge(existing, patch)
		return merged, changed || !isObj
	}

	if had && ir.Equal(old, change) {
		return old, false
	}
	return change, true
}
