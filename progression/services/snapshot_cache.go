package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
)

const snapshotKeyPrefix = "progression:"

// RedisSnapshotCache stores leaderboard pages as JSON strings with a TTL.
type RedisSnapshotCache struct {
	client *redis.Client
}

var _ SnapshotCache = (*RedisSnapshotCache)(nil)

// NewRedisSnapshotCache connects to Redis and verifies the connection.
func NewRedisSnapshotCache(ctx context.Context, addr, password string, db int) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: config.NetworkDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.NetworkDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisSnapshotCache{client: client}, nil
}

func (c *RedisSnapshotCache) Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, snapshotKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}

	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return entries, true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, key string, entries []LeaderboardEntry, ttl time.Duration) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}
	if err := c.client.Set(ctx, snapshotKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

func (c *RedisSnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
