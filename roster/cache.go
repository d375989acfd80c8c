package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache is a Redis-backed PageCache. Keys are namespaced by URL; entries
// expire after the configured TTL so stale rosters age out between admission
// rounds.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache parses redisURL, verifies connectivity, and returns a Cache.
func NewCache(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

func cacheKey(url string) string {
	return "roster:page:" + url
}

// Get returns the cached page for url, if present.
func (c *Cache) Get(ctx context.Context, url string) (string, bool) {
	content, err := c.rdb.Get(ctx, cacheKey(url)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logrus.Warnf("roster cache get %s: %v", url, err)
		return "", false
	}
	return content, true
}

// Store caches the page for url with the configured TTL. Failures are logged
// and swallowed: the cache is an optimization, never a correctness dependency.
func (c *Cache) Store(ctx context.Context, url, content string) {
	if err := c.rdb.Set(ctx, cacheKey(url), content, c.ttl).Err(); err != nil {
		logrus.Warnf("roster cache store %s: %v", url, err)
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
