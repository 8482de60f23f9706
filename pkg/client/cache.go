package client

import (
	"fmt"
	"sync"
)

// Query cache keys. Mutations invalidate these so the next read refetches.
const (
	ProjectsKey = "projects"
	UsersKey    = "users"
)

func TasksKey(projectID uint) string {
	return fmt.Sprintf("tasks/%d", projectID)
}

// Cache is an explicit query cache passed into the client; there is no
// package-level cache state.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]interface{})}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// Update applies fn to the cached value under key, if present. Used to
// reconcile a cached list in place without a refetch.
func (c *Cache) Update(key string, fn func(interface{}) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		c.entries[key] = fn(v)
	}
}
