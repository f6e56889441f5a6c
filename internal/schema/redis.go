package schema

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/datachat/datachat/internal/observability"
)

const redisKey = "datachat:schema:description"

// RedisCache shares one schema description across replicas via a TTL'd key.
// Redis outages degrade to a direct introspection per request; the cache
// never turns a redis failure into a pipeline failure.
type RedisCache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, source Source, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, source: source, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context) string {
	cached, err := c.client.Get(ctx, redisKey).Result()
	if err == nil {
		observability.ObserveSchemaCacheHit()
		return cached
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "schema cache read failed", slog.Any("error", err))
	}

	description, err := c.source.Describe(ctx)
	observability.ObserveSchemaCacheRebuild(err != nil)
	if err != nil {
		c.logger.WarnContext(ctx, "schema introspection failed", slog.Any("error", err))
		return Unavailable
	}

	if err := c.client.Set(ctx, redisKey, description, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "schema cache write failed", slog.Any("error", err))
	}
	return description
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, redisKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "schema cache invalidate failed", slog.Any("error", err))
	}
}
