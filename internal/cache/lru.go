package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU tracks keys in least-recently-used order.
type LRU[K comparable] struct {
	mu         sync.Mutex
	maxEntries int
	maxWeight  int64
	weight     int64
	items      map[K]*list.Element
	evictList  *list.List

	evictions atomic.Int64
}

type entry[K comparable] struct {
	key    K
	weight int64
}

// NewLRU creates a policy bounded by entry count and total weight.
func NewLRU[K comparable](maxEntries int, maxWeight int64) *LRU[K] {
	return &LRU[K]{
		maxEntries: max(maxEntries, 0),
		maxWeight:  max(maxWeight, 0),
		items:      make(map[K]*list.Element),
		evictList:  list.New(),
	}
}

// Touch marks key as most recently used and reports whether it is tracked.
func (c *LRU[K]) Touch(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		return true
	}
	return false
}

// Add records an access to key with the given weight, inserting it if it is
// new. It never evicts; callers drain the excess with EvictOverflow.
func (c *LRU[K]) Add(key K, weight int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*entry[K])
		c.weight += weight - e.weight
		e.weight = weight
		return
	}
	c.items[key] = c.evictList.PushFront(&entry[K]{key: key, weight: weight})
	c.weight += weight
}

// EvictOverflow removes the least recently used key while the bounds are
// exceeded. An entry heavier than maxWeight is eventually evicted itself.
func (c *LRU[K]) EvictOverflow() (K, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	back := c.evictList.Back()
	if back == nil || !c.overflow() {
		var zero K
		return zero, false
	}
	c.evictions.Add(1)
	return c.removeElement(back), true
}

func (c *LRU[K]) overflow() bool {
	if c.maxEntries > 0 && c.evictList.Len() > c.maxEntries {
		return true
	}
	return c.maxWeight > 0 && c.weight > c.maxWeight
}

// EvictOldest removes the least recently used key.
func (c *LRU[K]) EvictOldest() (K, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	back := c.evictList.Back()
	if back == nil {
		var zero K
		return zero, false
	}
	c.evictions.Add(1)
	return c.removeElement(back), true
}

// Remove stops tracking key. It is not counted as an eviction.
func (c *LRU[K]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[key]
	if ok {
		c.removeElement(ent)
	}
	return ok
}

func (c *LRU[K]) removeElement(e *list.Element) K {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[K])
	delete(c.items, kv.key)
	c.weight -= kv.weight
	return kv.key
}

// Len returns the number of tracked keys.
func (c *LRU[K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Weight returns the summed weight of tracked keys.
func (c *LRU[K]) Weight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

// Evictions returns the number of keys evicted so far.
func (c *LRU[K]) Evictions() int64 { return c.evictions.Load() }
