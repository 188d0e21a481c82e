package client

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/taskdeck/taskdeck/internal/meta"
)

// Cache holds query results keyed by (entity type, operation,
// canonical parameters). Invalidation is coarse: a successful mutation
// bumps the entity type's generation counter, and entries captured
// under an older generation short-circuit to a refetch. Entry count is
// bounded by an LRU; eviction order is the LRU's concern, correctness
// only depends on the generation check.
type Cache struct {
	mu      sync.Mutex
	gens    map[meta.Key]uint64
	entries *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	value any
	gen   uint64
}

// NewCache creates a cache bounded to size entries.
func NewCache(size int) *Cache {
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		panic(fmt.Sprintf("client: cache size %d: %v", size, err))
	}
	return &Cache{
		gens:    make(map[meta.Key]uint64),
		entries: entries,
	}
}

func cacheKey(key meta.Key, op, args string) string {
	return key.String() + "|" + op + "|" + args
}

// Get returns the cached value for the exact key tuple, or ok=false
// when the entry is absent or stale.
func (c *Cache) Get(key meta.Key, op, args string) (any, bool) {
	c.mu.Lock()
	gen := c.gens[key]
	c.mu.Unlock()
	e, ok := c.entries.Get(cacheKey(key, op, args))
	if !ok || e.gen != gen {
		return nil, false
	}
	return e.value, true
}

// Put stores a value under the entity type's current generation.
// A result of an in-flight request issued before an invalidation
// carries the old generation and is never served.
func (c *Cache) Put(key meta.Key, op, args string, gen uint64, value any) {
	c.entries.Add(cacheKey(key, op, args), cacheEntry{value: value, gen: gen})
}

// Generation returns the entity type's current generation. Callers
// capture it before issuing a request and pass it to Put.
func (c *Cache) Generation(key meta.Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// Invalidate marks every cached read of the entity type stale.
func (c *Cache) Invalidate(key meta.Key) {
	c.mu.Lock()
	c.gens[key]++
	c.mu.Unlock()
}
