// Package memo provides a small pure-function result cache keyed by the
// exact argument tuple. A cache belongs to one owner and lives as long as
// the owner does; nothing here is process-wide.
package memo

import (
	"strconv"
	"strings"
)

// Cache memoizes results of a pure computation by key.
type Cache[K comparable, V any] struct {
	entries map[K]V
}

// New returns an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. The boolean reports whether the value came from the cache. An error
// from compute is returned as-is and nothing is stored.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, bool, error) {
	if v, ok := c.entries[key]; ok {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.entries[key] = v
	return v, false, nil
}

// Get returns the cached value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// FloatKey encodes a float tuple as an exact cache key. The 'b' format is
// lossless, so two tuples map to the same key only if they are bitwise equal
// coordinate by coordinate.
func FloatKey(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatFloat(x, 'b', -1, 64)
	}
	return strings.Join(parts, ",")
}
