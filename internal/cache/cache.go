// Package cache provides the caching layer for validated analysis results
// and API rate-limit counters. Two implementations exist: an in-process
// MemoryCache (state resets on restart) and a
// Redis-backed cache for multi-process deployments.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
	Close() error
}

// MemoryCache is an in-process Cache. Expiry is checked lazily on read
// rather than with per-entry timers; a max-entry bound with LRU eviction
// keeps growth bounded under production load.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	counters   map[string]*counter
}

type memEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

type counter struct {
	value     int64
	expiresAt time.Time
}

// NewMemoryCache creates a MemoryCache bounded to maxEntries.
// Non-positive maxEntries means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		counters:   make(map[string]*counter),
	}
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*memEntry)
		ent.value = value
		ent.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(el)
		return nil
	}

	el := c.order.PushFront(&memEntry{key: key, value: value, expiresAt: time.Now().Add(ttl)})
	c.entries[key] = el

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*memEntry).key)
		}
	}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	ent := el.Value.(*memEntry)
	if time.Now().After(ent.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	return ent.value, true, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
	return nil
}

func (c *MemoryCache) Ping(_ context.Context) error { return nil }

func (c *MemoryCache) IncrWithExpiry(_ context.Context, key string, expiry time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	ct, ok := c.counters[key]
	if !ok || now.After(ct.expiresAt) {
		ct = &counter{expiresAt: now.Add(expiry)}
		c.counters[key] = ct
	}
	ct.value++
	ct.expiresAt = now.Add(expiry)
	return ct.value, nil
}

func (c *MemoryCache) Close() error { return nil }

// Len returns the number of live entries, counting expired-but-unread ones.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

var _ Cache = (*MemoryCache)(nil)
