package selector

import "sync"

// memo caches the result for the last key it saw. A hit returns the cached
// value itself, so callers can compare results by identity.
type memo[K comparable, V any] struct {
	mu  sync.Mutex
	ok  bool
	key K
	val V
}

func (m *memo[K, V]) get(key K, compute func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ok && m.key == key {
		return m.val
	}
	m.val = compute()
	m.key = key
	m.ok = true
	return m.val
}
