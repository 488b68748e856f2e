package selector

import (
	"github.com/relatixjs/relatix/internal/resolve"
)

// Set holds the shallow and deep selectors of every table of a model.
type Set struct {
	shallow map[string]*Shallow
	deep    map[string]*Deep
}

// NewSet creates selectors for tables, resolving through r.
func NewSet(tables []string, r *resolve.Resolver) *Set {
	set := &Set{
		shallow: make(map[string]*Shallow, len(tables)),
		deep:    make(map[string]*Deep, len(tables)),
	}
	for _, name := range tables {
		set.shallow[name] = NewShallow(name)
		set.deep[name] = NewDeep(name, r)
	}
	return set
}

// Table returns the shallow selectors of name.
func (set *Set) Table(name string) (*Shallow, bool) {
	sel, ok := set.shallow[name]
	return sel, ok
}

// Deep returns the deep selectors of name.
func (set *Set) Deep(name string) (*Deep, bool) {
	sel, ok := set.deep[name]
	return sel, ok
}
