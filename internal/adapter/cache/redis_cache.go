package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

const snapshotKey = "auction:snapshot"

var _ port.Cache = (*RedisCache)(nil)

// RedisCache serves the market snapshot to readers without touching the
// engine's lock.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func (c *RedisCache) SetSnapshot(ctx context.Context, snap *domain.MarketSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey, b, c.ttl).Err()
}

func (c *RedisCache) GetSnapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	b, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.MarketSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, snapshotKey).Err()
}

// Underlying exposes the redis client for the event publisher.
func (c *RedisCache) Underlying() *redis.Client {
	return c.client
}
