package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/meta"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache(8)
	gen := c.Generation(meta.KeyTask)
	c.Put(meta.KeyTask, "get", "1", gen, "value")

	v, ok := c.Get(meta.KeyTask, "get", "1")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = c.Get(meta.KeyTask, "get", "2")
	assert.False(t, ok)
	_, ok = c.Get(meta.KeyStatus, "get", "1")
	assert.False(t, ok)
}

func TestCacheInvalidateMakesEntriesStale(t *testing.T) {
	c := NewCache(8)
	gen := c.Generation(meta.KeyTask)
	c.Put(meta.KeyTask, "search", "a", gen, 1)
	c.Put(meta.KeyStatus, "search", "a", c.Generation(meta.KeyStatus), 2)

	c.Invalidate(meta.KeyTask)

	_, ok := c.Get(meta.KeyTask, "search", "a")
	assert.False(t, ok)

	// Other entity types are untouched.
	v, ok := c.Get(meta.KeyStatus, "search", "a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCacheOldGenerationNeverServed(t *testing.T) {
	c := NewCache(8)
	gen := c.Generation(meta.KeyTask)

	// The invalidation lands while the request is in flight; its result
	// is stored under the pre-invalidation generation.
	c.Invalidate(meta.KeyTask)
	c.Put(meta.KeyTask, "get", "1", gen, "stale")

	_, ok := c.Get(meta.KeyTask, "get", "1")
	assert.False(t, ok)

	// A fresh fetch under the new generation is served.
	c.Put(meta.KeyTask, "get", "1", c.Generation(meta.KeyTask), "fresh")
	v, ok := c.Get(meta.KeyTask, "get", "1")
	require.True(t, ok)
	assert.Equal(t, "fresh", v)
}

func TestCacheBounded(t *testing.T) {
	c := NewCache(2)
	gen := c.Generation(meta.KeyTask)
	c.Put(meta.KeyTask, "get", "1", gen, 1)
	c.Put(meta.KeyTask, "get", "2", gen, 2)
	c.Put(meta.KeyTask, "get", "3", gen, 3)

	_, ok := c.Get(meta.KeyTask, "get", "1")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Get(meta.KeyTask, "get", "3")
	assert.True(t, ok)
}

func TestNewCachePanicsOnBadSize(t *testing.T) {
	assert.Panics(t, func() { NewCache(0) })
}
