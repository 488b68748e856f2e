// Package ident generates record ids and labels.
package ident

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces a record id for a population key (or for an ad-hoc
// record, where key is empty).
type Generator interface {
	Generate(key string) string
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(key string) string

// Generate calls f(key).
func (f GeneratorFunc) Generate(key string) string {
	return f(key)
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// The population key is ignored.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate(string) string {
	return uuid.Must(uuid.NewV7()).String()
}

// KeyGenerator uses the population key itself as the id. Ad-hoc records
// (empty key) fall back to a UUIDv7.
type KeyGenerator struct{}

// Generate returns key, or a fresh UUIDv7 when key is empty.
func (KeyGenerator) Generate(key string) string {
	if key == "" {
		return UUIDv7Generator{}.Generate(key)
	}
	return key
}

// SequenceGenerator returns prefix-1, prefix-2, ... in call order.
// Used for deterministic tests and golden snapshots.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator whose first id is prefix-1.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceGenerator) Generate(string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// FixedGenerator returns predetermined ids in order.
//
// Panics once all ids have been consumed, to catch test misconfiguration.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate(string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
