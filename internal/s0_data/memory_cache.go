package s0_data

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bistsignal/backend/pkg/logger"
)

// MemoryCache is the in-process Cache used when Redis is disabled.
// Values are stored as JSON so callers see the same copy semantics as Redis.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	logger  *logger.Logger
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero never expires
}

// NewMemoryCache creates an empty cache
func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		logger:  log.Module("memory_cache"),
		now:     time.Now,
	}
}

// Get decodes the value of key into dest; expired entries read as missing
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || c.expired(entry) {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key for ttl (0 keeps it until deleted)
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanStale removes expired entries and returns how many were dropped
func (c *MemoryCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Debug("Cleaned stale cache entries")
	}

	return count
}

func (c *MemoryCache) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}
