package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	listCachePrefix = "products:v:"
	versionKey      = "products:version"
)

// DefaultTTL bounds staleness even if an invalidation is missed.
const DefaultTTL = 5 * time.Minute

// ProductListCache caches pages of the public product listing.
// Implementations must be safe to skip: a miss is never an error.
type ProductListCache interface {
	Get(ctx context.Context, categoryName string, page int, dest interface{}) bool
	SetAsync(categoryName string, page int, value interface{})
	Invalidate()
}

// RedisListCache implements ProductListCache with versioned keys.
// Invalidation bumps the version counter, orphaning every cached page
// at once instead of scanning for keys; orphans expire via TTL.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisListCache(client *redis.Client, logger *zap.Logger) *RedisListCache {
	return &RedisListCache{
		client: client,
		ttl:    DefaultTTL,
		logger: logger,
	}
}

// Get retrieves a cached listing page into dest, reporting whether the
// cache held it.
func (c *RedisListCache) Get(ctx context.Context, categoryName string, page int, dest interface{}) bool {
	version, err := c.version(ctx)
	if err != nil || version == 0 {
		return false
	}

	data, err := c.client.Get(ctx, c.key(version, categoryName, page)).Result()
	if err != nil {
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return false
	}
	return true
}

// SetAsync stores a listing page in the background so the request is
// never blocked on the cache write.
func (c *RedisListCache) SetAsync(categoryName string, page int, value interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := c.version(ctx)
		if err != nil || version == 0 {
			return
		}

		data, err := json.Marshal(value)
		if err != nil {
			c.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}

		if err := c.client.Set(ctx, c.key(version, categoryName, page), data, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate drops all cached pages by bumping the version counter.
func (c *RedisListCache) Invalidate() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
			c.logger.Warn("Failed to bump product cache version", zap.Error(err))
		}
	}()
}

// version returns the current cache version, initializing it on first
// use.
func (c *RedisListCache) version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (c *RedisListCache) key(version int64, categoryName string, page int) string {
	return fmt.Sprintf("%s%d:cat=%s:page=%d", listCachePrefix, version, categoryName, page)
}
