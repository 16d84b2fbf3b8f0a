package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"signwise/internal/services/tiering"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value stored at key into dest. A missing key is reported as
// found == false with a nil error.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds keys of the form entity:kind:value.
func GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

func tierKey(vendorID string) string {
	return GenerateKey("vendor", "tier", vendorID)
}

// tierSnapshot is a classification stamped with the counters version of the
// vendor row it was computed from.
type tierSnapshot struct {
	Version        int64                  `json:"version"`
	Classification tiering.Classification `json:"classification"`
}

const maxTierWriteAttempts = 3

// SetTier stores c unless the cache already holds a snapshot of the same or a
// newer version. The compare and the write run under WATCH, so snapshots
// written out of order never replace a newer one.
func (s *CacheService) SetTier(ctx context.Context, vendorID string, version int64, c tiering.Classification) error {
	key := tierKey(vendorID)
	payload, err := json.Marshal(tierSnapshot{Version: version, Classification: c})
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	write := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if !supersedes(version, stored) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTierWriteAttempts; attempt++ {
		err = s.client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// supersedes reports whether a snapshot of version should replace the stored
// one. Unreadable entries are always replaced.
func supersedes(version int64, stored []byte) bool {
	if len(stored) == 0 {
		return true
	}
	var current tierSnapshot
	if err := json.Unmarshal(stored, &current); err != nil {
		return true
	}
	return version > current.Version
}

// GetTier returns nil, nil on a miss.
func (s *CacheService) GetTier(ctx context.Context, vendorID string) (*tiering.Classification, error) {
	var snap tierSnapshot
	found, err := s.Get(ctx, tierKey(vendorID), &snap)
	if err != nil || !found {
		return nil, err
	}
	return &snap.Classification, nil
}

func (s *CacheService) InvalidateTier(ctx context.Context, vendorID string) error {
	return s.Delete(ctx, tierKey(vendorID))
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
