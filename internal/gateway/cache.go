package gateway

import (
	"sync"

	"github.com/policylab/beancouncil/internal/oracle"
)

// Cache memoizes successful judgments for the lifetime of one gateway.
// Selections are the identity of the negotiation state, so replaying the
// same state must reproduce the same judgment without touching the oracle.
// Entries never expire; the key space is bounded by the session.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*oracle.Judgment
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*oracle.Judgment)}
}

func (c *Cache) Get(key string) (*oracle.Judgment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	j, ok := c.entries[key]
	return j, ok
}

func (c *Cache) Put(key string, j *oracle.Judgment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = j
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey identifies one conceptual oracle call: persona, serialized
// selection state, directed message and the focused policy area.
func cacheKey(req oracle.Request) string {
	return string(req.Persona) + "|" + req.Selections.CacheKey() + "|" + req.Message + "|" + req.FocusArea
}
