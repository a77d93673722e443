package memory

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"
)

// Cache is an in-process implementation of app.Cache.
// Entries expire after the TTL plus up to 10% jitter; a non-positive TTL keeps them until invalidated.
type Cache struct {
	ttl   time.Duration
	clock func() time.Time
	rnd   *rand.Rand

	mu       sync.RWMutex
	entries  map[string]cacheEntry
	versions map[string]int64
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return NewCacheWithClock(ttl, time.Now)
}

// NewCacheWithClock is test-only for deterministic expiry.
func NewCacheWithClock(ttl time.Duration, clock func() time.Time) *Cache {
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries:  make(map[string]cacheEntry),
		versions: make(map[string]int64),
	}
}

func (c *Cache) Get(_ context.Context, key string, dest any) (bool, error) {
	now := c.clock()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.value, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, data)
	return nil
}

func (c *Cache) Version(_ context.Context, key string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[key], nil
}

// SetIfVersion stores value only while key is still at version.
func (c *Cache) SetIfVersion(_ context.Context, key string, value any, version int64) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != version {
		return false, nil
	}
	c.store(key, data)
	return true, nil
}

func (c *Cache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.versions[key]++
	}
	return nil
}

// store must be called with mu held.
func (c *Cache) store(key string, data []byte) {
	entry := cacheEntry{value: data}
	if ttl := c.ttlWithJitter(); ttl > 0 {
		entry.expiresAt = c.clock().Add(ttl)
	}
	c.entries[key] = entry
}

// ttlWithJitter must be called with mu held; rnd is not safe for concurrent use.
func (c *Cache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
