// Package cache keeps recently served player records in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// RecordKey returns the Redis key holding playerID's record.
func RecordKey(playerID int64) string {
	return fmt.Sprintf("player:%d:stats", playerID)
}

// RedisStore reads and writes JSON-encoded player records with a fixed TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
//
// Precondition: client must be non-nil; ttl must be positive.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Connect opens a client for cfg.RedisURL and verifies it with a ping.
//
// Postcondition: Returns a ready store, or a non-nil error with the client
// closed.
func Connect(ctx context.Context, cfg config.CacheConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedisStore(client, cfg.TTL), nil
}

// PlayerStats returns the cached record for playerID.
//
// Postcondition: A cache miss returns an error wrapping
// compare.ErrPlayerNotFound. So does an entry that fails to decode, belongs to
// another player or fails validation; such an entry is evicted.
func (s *RedisStore) PlayerStats(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error) {
	data, err := s.client.Get(ctx, RecordKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("player %d not cached: %w", playerID, compare.ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("reading player %d: %w", playerID, err)
	}

	rec, err := stats.DecodeRecord(data, playerID)
	if err != nil {
		if delErr := s.client.Del(ctx, RecordKey(playerID)).Err(); delErr != nil {
			err = errors.Join(err, fmt.Errorf("evicting: %w", delErr))
		}
		return nil, fmt.Errorf("cached player %d discarded: %w: %w", playerID, compare.ErrPlayerNotFound, err)
	}
	return rec, nil
}

// Save stores rec under its key for the store's TTL.
func (s *RedisStore) Save(ctx context.Context, rec *stats.PlayerStatRecord) error {
	if rec == nil {
		return fmt.Errorf("caching player: nil record")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling player %d: %w", rec.PlayerID, err)
	}
	if err := s.client.Set(ctx, RecordKey(rec.PlayerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("caching player %d: %w", rec.PlayerID, err)
	}
	return nil
}

// Invalidate drops the cached records for the given players.
func (s *RedisStore) Invalidate(ctx context.Context, playerIDs ...int64) error {
	if len(playerIDs) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, id := range playerIDs {
		pipe.Del(ctx, RecordKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidating players: %w", err)
	}
	return nil
}

// Health pings Redis within timeout.
func (s *RedisStore) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
