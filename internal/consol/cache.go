package consol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "consol:version"

// Cache stores built reports in Redis under version-stamped keys. Bumping the
// version orphans every earlier key.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader.
// It reports whether the value came from the cache.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) (bool, error) {
	if loader == nil {
		return false, errors.New("consol: cache loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return true, json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return false, err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return false, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return false, err
		}
	}
	return false, json.Unmarshal(raw, dest)
}

// Bump invalidates every cached report by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
