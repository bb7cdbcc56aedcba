package identity

import (
	"container/list"
	"sync"
	"time"

	"github.com/claraconfirms/backend/models"
)

// cacheEntry is a user snapshot keyed by Supabase UID
type cacheEntry struct {
	uid        string
	user       *models.User
	insertedAt time.Time
	element    *list.Element
}

// Cache is a bounded in-memory cache of resolved identities with TTL.
// Eviction at capacity removes the oldest-inserted entry (FIFO, not LRU):
// reads never refresh an entry's position, so a hot-but-stale identity still
// ages out and gets re-read from the store.
// Thread-safe; each map operation is atomic, no cross-operation lock.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*cacheEntry
	insertOrd *list.List // front = newest insertion, back = oldest
	maxSize   int
	ttl       time.Duration
	now       func() time.Time
	hits      uint64
	misses    uint64
}

// NewCache creates a Cache with the given capacity and TTL
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		entries:   make(map[string]*cacheEntry),
		insertOrd: list.New(),
		maxSize:   maxSize,
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock overrides the cache's clock for deterministic tests
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the cached snapshot for a Supabase UID, or nil when absent
// or older than the TTL. Expired entries are removed on read.
func (c *Cache) Get(uid string) *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[uid]
	if !exists || c.now().Sub(entry.insertedAt) >= c.ttl {
		c.misses++
		if exists {
			c.removeEntry(uid)
		}
		return nil
	}

	c.hits++
	return entry.user
}

// Set stores a snapshot for a Supabase UID. Re-inserting an existing UID
// refreshes its insertion time and position. At capacity the oldest-inserted
// entry is evicted.
func (c *Cache) Set(uid string, user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[uid]; exists {
		entry.user = user
		entry.insertedAt = c.now()
		c.insertOrd.MoveToFront(entry.element)
		return
	}

	if c.insertOrd.Len() >= c.maxSize {
		c.evictOldest()
	}

	entry := &cacheEntry{
		uid:        uid,
		user:       user,
		insertedAt: c.now(),
	}
	entry.element = c.insertOrd.PushFront(uid)
	c.entries[uid] = entry
}

// Invalidate removes a single entry
func (c *Cache) Invalidate(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeEntry(uid)
}

// InvalidateAll removes every entry
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.insertOrd.Init()
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.insertOrd.Len()
}

// Stats returns hit/miss counters
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits, c.misses
}

// removeEntry removes an entry (must be called with lock held)
func (c *Cache) removeEntry(uid string) {
	if entry, exists := c.entries[uid]; exists {
		c.insertOrd.Remove(entry.element)
		delete(c.entries, uid)
	}
}

// evictOldest evicts the oldest-inserted entry (must be called with lock held)
func (c *Cache) evictOldest() {
	back := c.insertOrd.Back()
	if back == nil {
		return
	}
	uid := back.Value.(string)
	c.insertOrd.Remove(back)
	delete(c.entries, uid)
}
