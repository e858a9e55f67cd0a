package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a size-bounded cache that counts hits and misses.
type LRU[K comparable, V any] struct {
	entries *lru.Cache[K, V]
	Hits    SafeCounter
	Misses  SafeCounter
}

// NewLRU creates a cache holding at most size entries. size < 1 is treated
// as 1.
func NewLRU[K comparable, V any](size int) (*LRU[K, V], error) {
	if size < 1 {
		size = 1
	}
	entries, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{entries: entries}, nil
}

// Get returns the cached value and records a hit or miss.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries.Get(key)
	if ok {
		c.Hits.Inc()
	} else {
		c.Misses.Inc()
	}
	return v, ok
}

// Add stores value under key, evicting the least recently used entry.
func (c *LRU[K, V]) Add(key K, value V) {
	c.entries.Add(key, value)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.entries.Len()
}

// Purge empties the cache. Counters are kept.
func (c *LRU[K, V]) Purge() {
	c.entries.Purge()
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
