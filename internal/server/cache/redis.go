package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type RedisCache struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisCache(client redisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient builds a go-redis client and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func generationKey(userID string) string {
	return fmt.Sprintf("series:gen:%s", userID)
}

func seriesKey(userID string, gen int64, g aggregation.Granularity) string {
	return fmt.Sprintf("series:%s:%d:%s", userID, gen, g)
}

func (c *RedisCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get series generation from Redis: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) Get(ctx context.Context, userID string, gen int64, g aggregation.Granularity) (*series.Series, bool, error) {
	data, err := c.client.Get(ctx, seriesKey(userID, gen, g)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get series from Redis: %w", err)
	}

	var s series.Series
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal series: %w", err)
	}
	return &s, true, nil
}

// Set stores s with the cache TTL. Entries of older generations are left to
// expire.
func (c *RedisCache) Set(ctx context.Context, userID string, gen int64, g aggregation.Granularity, s *series.Series) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	if err := c.client.Set(ctx, seriesKey(userID, gen, g), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set series in Redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Incr(ctx, generationKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate series in Redis: %w", err)
	}
	return nil
}
