package s0_data

import (
	"context"
	"time"
)

// Cache is the JSON cache used in front of slower stores.
// *redis.Cache satisfies it; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
