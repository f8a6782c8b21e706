package subscriptions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bitreon-labs/bitreon/pkg/logger"
)

// RedisCache is a StatusCache backed by Redis, for deployments running more
// than one gateway instance. Cache misses on Redis errors: a degraded cache
// only costs an extra contract read, never a wrong access decision.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache creates a Redis-backed cache from a redis:// URL.
func NewRedisCache(url string, ttl time.Duration, log *logger.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewDefault("subscription-cache")
	}
	return &RedisCache{
		client: redis.NewClient(opts),
		ttl:    ttl,
		log:    log,
	}, nil
}

func redisKey(subscriber string, creatorID uint64) string {
	return "bitreon:substatus:" + cacheKey(subscriber, creatorID)
}

func (c *RedisCache) Get(ctx context.Context, subscriber string, creatorID uint64) (Status, bool) {
	raw, err := c.client.Get(ctx, redisKey(subscriber, creatorID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("cache read failed")
		}
		return Status{}, false
	}

	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		c.log.WithError(err).Warn("cache entry corrupt")
		return Status{}, false
	}
	return st, true
}

func (c *RedisCache) Set(ctx context.Context, subscriber string, creatorID uint64, st Status) {
	raw, err := json.Marshal(st)
	if err != nil {
		c.log.WithError(err).Warn("cache entry marshal failed")
		return
	}
	if err := c.client.Set(ctx, redisKey(subscriber, creatorID), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("cache write failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, subscriber string, creatorID uint64) {
	if err := c.client.Del(ctx, redisKey(subscriber, creatorID)).Err(); err != nil {
		c.log.WithError(err).Warn("cache invalidation failed")
	}
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
