package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON values under "<prefix>:<key>"
// ⭐ SSOT: price series and the macro snapshot are cached through here
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return c.prefix + ":" + key
}

// Get decodes a cached value into dest; a missing key is (false, nil)
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// stale layout from an older release; drop it so the next write wins
		c.client.rdb.Del(ctx, c.key(key))
		return false, fmt.Errorf("cache unmarshal %s: %w", key, err)
	}

	return true, nil
}

// Set stores a value with TTL; ttl 0 keeps it until deleted
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	return c.client.rdb.Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.rdb.Del(ctx, c.key(key)).Err()
}

// Predefined TTLs
const (
	TTLMedium = 15 * time.Minute // daily price series on a trading day
	TTLLong   = 1 * time.Hour    // macro snapshot
	TTLDaily  = 24 * time.Hour   // series fetched over the weekend
)

// SeriesTTL picks the price series TTL; nothing changes until Monday's session
func SeriesTTL(now time.Time) time.Duration {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return TTLDaily
	default:
		return TTLMedium
	}
}

// PriceSeriesKey identifies a daily series for a symbol and lookback period
func PriceSeriesKey(symbol, period string) string {
	return fmt.Sprintf("prices:%s:%s", symbol, period)
}

// MacroSnapshotKey identifies the current macro snapshot
func MacroSnapshotKey() string {
	return "macro:snapshot"
}

// JobHistoryKey identifies the run history of a scheduled job
func JobHistoryKey(job string) string {
	return fmt.Sprintf("scheduler:history:%s", job)
}
