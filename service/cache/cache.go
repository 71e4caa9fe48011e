// Package cache provides a small in-memory TTL cache used for connector
// response caching and other short-lived lookups.
package cache

import (
	"sync"
	"time"

	"github.com/atomhq/atom/internal/clock"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a concurrency-safe map with per-entry expiry.  Expired entries are
// dropped lazily on access and by a background sweep.
type Cache struct {
	mux        sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// New creates a cache with the given default TTL and starts a background
// sweep at the supplied interval; sweepInterval <= 0 disables the sweep.
func New(defaultTTL, sweepInterval time.Duration) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		stopCh:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweep(sweepInterval)
	}
	return c
}

// Set stores the value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores the value under key; ttl <= 0 stores it without expiry.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	item := entry{value: value}
	if ttl > 0 {
		item.expiresAt = clock.Now().Add(ttl)
	}
	c.mux.Lock()
	c.entries[key] = item
	c.mux.Unlock()
}

// Get returns the value and whether a live entry was found.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mux.RLock()
	item, ok := c.entries[key]
	c.mux.RUnlock()
	if !ok {
		return nil, false
	}
	if !item.expiresAt.IsZero() && clock.Now().After(item.expiresAt) {
		c.Delete(key)
		return nil, false
	}
	return item.value, true
}

// Delete removes the entry under key.
func (c *Cache) Delete(key string) {
	c.mux.Lock()
	delete(c.entries, key)
	c.mux.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return len(c.entries)
}

// Close stops the background sweep.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			now := clock.Now()
			c.mux.Lock()
			for key, item := range c.entries {
				if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mux.Unlock()
		}
	}
}
