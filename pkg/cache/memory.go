package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	resource  string
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Values are stored encoded so callers
// never share mutable state with the cache.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	resources map[string]map[string]struct{}
	now       func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:   make(map[string]memoryEntry),
		resources: make(map[string]map[string]struct{}),
		now:       time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		c.remove(key)
		c.mu.Unlock()

		return false, nil
	}

	err := json.Unmarshal(entry.data, dest)
	if err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}

	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, resource, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)

	c.entries[key] = memoryEntry{data: data, resource: resource, expiresAt: c.now().Add(ttl)}

	keys, ok := c.resources[resource]
	if !ok {
		keys = make(map[string]struct{})
		c.resources[resource] = keys
	}

	keys[key] = struct{}{}

	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, resource string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.resources[resource] {
		delete(c.entries, key)
	}

	delete(c.resources, resource)

	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	clear(c.resources)

	return nil
}

// remove must be called with mu held.
func (c *MemoryCache) remove(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}

	delete(c.entries, key)

	if keys, ok := c.resources[entry.resource]; ok {
		delete(keys, key)

		if len(keys) == 0 {
			delete(c.resources, entry.resource)
		}
	}
}
