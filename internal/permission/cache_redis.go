package permission

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisGenerationKey = "generation"

// RedisCache shares results between processes through Redis.
// Keys carry a generation number and invalidation moves to the next generation.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis backed cache. Keys are stored below prefix.
func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Generation implements Cache.
func (c *RedisCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, c.prefix+":"+redisGenerationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("redis cache generation: %w", err)
	}

	return gen, nil
}

func (c *RedisCache) key(gen uint64, key string) string {
	return c.prefix + ":" + strconv.FormatUint(gen, 10) + ":" + key
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, gen uint64, key string) (bool, bool, error) {
	value, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}

	if err != nil {
		return false, false, fmt.Errorf("redis cache get: %w", err)
	}

	return decodeResult(value), true, nil
}

// Set implements Cache. A result of a past generation lands below a key nobody reads.
func (c *RedisCache) Set(ctx context.Context, gen uint64, key string, allowed bool) error {
	return c.client.Set(ctx, c.key(gen, key), encodeResult(allowed), c.ttl).Err()
}

// Invalidate implements Cache.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.prefix+":"+redisGenerationKey).Err()
}
