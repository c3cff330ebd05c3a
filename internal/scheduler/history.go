package scheduler

import (
	"context"
	"time"
)

// HistoryStore persists job history between processes
type HistoryStore interface {
	Load(ctx context.Context, job string) (*JobHistory, error)
	Save(ctx context.Context, job string, history *JobHistory) error
}

// Cache is the JSON cache behind CacheHistoryStore; *redis.Cache satisfies it
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// historyTTL bounds how long an idle job keeps its history
const historyTTL = 30 * 24 * time.Hour

// CacheHistoryStore keeps each job's history under one cache key
type CacheHistoryStore struct {
	cache Cache
	key   func(job string) string
}

// NewCacheHistoryStore creates a store that writes history under key(job)
func NewCacheHistoryStore(cache Cache, key func(job string) string) *CacheHistoryStore {
	return &CacheHistoryStore{cache: cache, key: key}
}

// Load returns the stored history, empty when none was saved
func (s *CacheHistoryStore) Load(ctx context.Context, job string) (*JobHistory, error) {
	var history JobHistory
	if _, err := s.cache.Get(ctx, s.key(job), &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// Save writes the history of job
func (s *CacheHistoryStore) Save(ctx context.Context, job string, history *JobHistory) error {
	return s.cache.Set(ctx, s.key(job), history, historyTTL)
}
