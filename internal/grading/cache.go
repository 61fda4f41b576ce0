package grading

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// CacheKey identifies one graded piece of content. Re-submitting unchanged
// text is a hit; any edit changes the hash and misses.
type CacheKey struct {
	EntityID    string
	ContentHash string
}

// ContentHash returns the sha256 hex digest of the submitted text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// FastCache memoizes fast results by (entity id, content hash) so a
// re-submission of identical content skips the provider calls.
type FastCache struct {
	mu      sync.RWMutex
	entries map[CacheKey]*FastResult
}

// NewFastCache creates an empty cache.
func NewFastCache() *FastCache {
	return &FastCache{entries: make(map[CacheKey]*FastResult)}
}

// Get returns the cached result and whether the key was present.
func (c *FastCache) Get(key CacheKey) (*FastResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

// Put stores a result, replacing any prior entry for the same entity with
// a different hash.
func (c *FastCache) Put(key CacheKey, result *FastResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// One live entry per entity: stale hashes are dropped.
	for k := range c.entries {
		if k.EntityID == key.EntityID && k.ContentHash != key.ContentHash {
			delete(c.entries, k)
		}
	}
	c.entries[key] = result
}
