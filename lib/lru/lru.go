// Package lru implements a fixed-capacity, array-backed, move-to-front LRU
// cache with caller-supplied comparison, hit, miss and evict callbacks. It
// deliberately does not use a hash table: lookup is a linear scan over a
// small fixed-capacity array, matching the original lru_cache module's
// design exactly.
package lru

import "github.com/JMaximus76/filesync/lib/memblock"

// entry pairs a key with its value inside the backing memblock.
type entry[K, V any] struct {
	key   K
	value V
	used  bool
}

// Cache is a fixed-capacity LRU keyed by K with values of V. Recency order
// is tracked as a slice of slot indices, front = most recently used.
type Cache[K, V any] struct {
	slots   *memblock.Block[entry[K, V]]
	order   []int // slot indices, front = most recent
	cmp     func(a, b K) bool
	onMiss  func(key K) (V, error)
	onHit   func(key K, value V)
	onEvict func(key K, value V)
}

// New creates a Cache of the given fixed capacity. cmp reports key
// equality. onMiss produces a value for a key not currently cached; onHit
// and onEvict are optional notification callbacks (nil is allowed).
func New[K, V any](capacity int, cmp func(a, b K) bool, onMiss func(key K) (V, error), onHit func(key K, value V), onEvict func(key K, value V)) *Cache[K, V] {
	return &Cache[K, V]{
		slots:   memblock.New[entry[K, V]](capacity),
		cmp:     cmp,
		onMiss:  onMiss,
		onHit:   onHit,
		onEvict: onEvict,
	}
}

// find returns the position in c.order of key, or -1.
func (c *Cache[K, V]) find(key K) int {
	for pos, idx := range c.order {
		if c.cmp(c.slots.Get(idx).key, key) {
			return pos
		}
	}
	return -1
}

// moveToFront relocates the order entry at pos to the front.
func (c *Cache[K, V]) moveToFront(pos int) {
	idx := c.order[pos]
	copy(c.order[1:pos+1], c.order[:pos])
	c.order[0] = idx
}

// Get returns the cached value for key, calling onMiss and inserting the
// result (evicting the least-recently-used entry if at capacity) when key
// is absent. onHit is called on a cache hit before Get returns.
func (c *Cache[K, V]) Get(key K) (V, error) {
	if pos := c.find(key); pos >= 0 {
		idx := c.order[pos]
		e := c.slots.Get(idx)
		if c.onHit != nil {
			c.onHit(key, e.value)
		}
		c.moveToFront(pos)
		return e.value, nil
	}

	value, err := c.onMiss(key)
	if err != nil {
		var zero V
		return zero, err
	}

	idx, err := c.slots.Acquire()
	if err != nil {
		// at capacity: evict the least-recently-used slot and reuse it
		lruPos := len(c.order) - 1
		lruIdx := c.order[lruPos]
		evicted := c.slots.Get(lruIdx)
		if c.onEvict != nil {
			c.onEvict(evicted.key, evicted.value)
		}
		c.order = c.order[:lruPos]
		c.slots.Release(lruIdx)
		idx, err = c.slots.Acquire()
		if err != nil {
			var zero V
			return zero, err
		}
	}

	*c.slots.Get(idx) = entry[K, V]{key: key, value: value, used: true}
	c.order = append([]int{idx}, c.order...)
	return value, nil
}

// Len returns the number of entries currently cached.
func (c *Cache[K, V]) Len() int { return len(c.order) }

// Cap returns the cache's fixed capacity.
func (c *Cache[K, V]) Cap() int { return c.slots.Cap() }
