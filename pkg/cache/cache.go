package cache

import (
	"sync"
	"time"
)

type item struct {
	value     interface{}
	expiresAt time.Time
}

func (it item) expired() bool {
	return time.Now().After(it.expiresAt)
}

// Cache is a thread-safe in-memory cache with per-item TTL. Expired entries
// are swept by a background goroutine; Get never returns a stale value.
type Cache struct {
	mu         sync.RWMutex
	items      map[string]item
	defaultTTL time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

func New(defaultTTL time.Duration) *Cache {
	c := &Cache{
		items:      make(map[string]item),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || it.expired() {
		return nil, false
	}
	return it.value, true
}

func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) sweep() {
	interval := c.defaultTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for k, it := range c.items {
				if it.expired() {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
