package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tastylog/backend/internal/domain"
)

// cacheItem holds one owner's record list with expiration
type cacheItem struct {
	Records    []domain.FoodRecord
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory record cache with TTL support.
// Every read hands out a copy; the stored slices never leave the cache.
type MemoryCache struct {
	data  map[string]cacheItem
	ttl   time.Duration
	mutex sync.RWMutex
	now   func() time.Time
}

// NewMemoryCache creates a new in-memory record cache. A zero ttl keeps entries until replaced.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cacheItem),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *MemoryCache) expiration() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *MemoryCache) expired(item cacheItem) bool {
	return !item.Expiration.IsZero() && c.now().After(item.Expiration)
}

// Replace swaps the owner's cached list wholesale
func (c *MemoryCache) Replace(ownerID string, records []domain.FoodRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[ownerID] = cacheItem{
		Records:    domain.CloneRecords(records),
		Expiration: c.expiration(),
	}
}

// Append adds a record to the owner's cached list. An owner without a live
// entry stays uncached, so the next read fetches the complete list.
func (c *MemoryCache) Append(ownerID string, record domain.FoodRecord) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.data[ownerID]
	if !exists || c.expired(item) {
		return false
	}
	item.Records = append(item.Records, record.Clone())
	c.data[ownerID] = item
	return true
}

// Patch replaces the cached record with the same remote id, wherever it is cached
func (c *MemoryCache) Patch(record domain.FoodRecord) bool {
	if record.RemoteID == "" {
		return false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for owner, item := range c.data {
		for i := range item.Records {
			if item.Records[i].RemoteID == record.RemoteID {
				item.Records[i] = record.Clone()
				c.data[owner] = item
				return true
			}
		}
	}
	return false
}

// Remove drops the cached record with the given remote id
func (c *MemoryCache) Remove(remoteID string) bool {
	if remoteID == "" {
		return false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for owner, item := range c.data {
		for i := range item.Records {
			if item.Records[i].RemoteID == remoteID {
				item.Records = append(item.Records[:i:i], item.Records[i+1:]...)
				c.data[owner] = item
				return true
			}
		}
	}
	return false
}

// Snapshot returns a copy of the owner's cached list if present and not expired
func (c *MemoryCache) Snapshot(ownerID string) ([]domain.FoodRecord, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[ownerID]
	if !exists || c.expired(item) {
		return nil, false
	}
	return domain.CloneRecords(item.Records), true
}

// Run removes expired entries periodically until ctx is cancelled
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.cleanupExpired(); removed > 0 {
				log.Printf("[Cache] Expired %d owner lists, %d still cached", removed, c.Size())
			}
		}
	}
}

// cleanupExpired drops expired entries and returns how many it removed
func (c *MemoryCache) cleanupExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key, item := range c.data {
		if c.expired(item) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached owners
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
