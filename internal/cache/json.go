// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// keyPrefix namespaces every cache entry.
	keyPrefix = "pressroom:"

	// DefaultTTL bounds staleness for entries nobody invalidates.
	DefaultTTL = 5 * time.Minute

	// KeyDashboard holds the staff dashboard aggregate.
	KeyDashboard = "dashboard:stats"

	// categoriesPrefix groups every category tree entry.
	categoriesPrefix = "categories:"
)

// HierarchyKey returns the key of a materialized category tree.
func HierarchyKey(includeEmpty bool) string {
	return categoriesPrefix + "hierarchy:" + strconv.FormatBool(includeEmpty)
}

// Observer is told about every lookup. metrics.Metrics satisfies it.
type Observer interface {
	Hit(key string)
	Miss(key string)
}

// JSONCache stores JSON-encoded values in Valkey. Every failure degrades to
// a miss; the cache never fails a request.
type JSONCache struct {
	client   *redis.Client
	ttl      time.Duration
	observer Observer
}

// New creates a cache backed by client. A zero ttl uses DefaultTTL.
func New(client *redis.Client, ttl time.Duration, observer Observer) *JSONCache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &JSONCache{client: client, ttl: ttl, observer: observer}
}

// Get decodes the entry for key into dst and reports whether it was found.
func (c *JSONCache) Get(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("cache get", zap.String("key", key), zap.Error(err))
		}
		c.miss(key)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		zap.L().Warn("cache decode", zap.String("key", key), zap.Error(err))
		c.miss(key)
		return false
	}
	c.hit(key)
	return true
}

// Set stores v under key with the configured TTL.
func (c *JSONCache) Set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("cache encode", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		zap.L().Warn("cache set", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes the given keys.
func (c *JSONCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		zap.L().Warn("cache invalidate", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidatePrefix removes every key starting with prefix by scanning.
func (c *JSONCache) InvalidatePrefix(ctx context.Context, prefix string) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+prefix+"*", 100).Result()
		if err != nil {
			zap.L().Warn("cache scan", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				zap.L().Warn("cache bulk delete", zap.Error(err))
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	zap.L().Debug("cache prefix cleared", zap.String("prefix", prefix), zap.Int("deleted", deleted))
}

// CategoriesChanged drops every category tree and the dashboard.
func (c *JSONCache) CategoriesChanged(ctx context.Context) {
	if c == nil {
		return
	}
	c.InvalidatePrefix(ctx, categoriesPrefix)
	c.Invalidate(ctx, KeyDashboard)
}

// PostsChanged drops the aggregates that include post counts.
func (c *JSONCache) PostsChanged(ctx context.Context) {
	c.CategoriesChanged(ctx)
}

func (c *JSONCache) hit(key string) {
	if c.observer != nil {
		c.observer.Hit(key)
	}
}

func (c *JSONCache) miss(key string) {
	if c.observer != nil {
		c.observer.Miss(key)
	}
}

// Fetch returns the cached value for key, or calls load and caches its
// result. A nil cache always loads.
func Fetch[T any](ctx context.Context, c *JSONCache, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c != nil && c.Get(ctx, key, &v) {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if c != nil {
		c.Set(ctx, key, v)
	}
	return v, nil
}
