// Package cache keeps a redis snapshot of the public menu.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/logger"
	"go.uber.org/zap"
)

const (
	menuKey    = "rumahkopi:menu:available"
	defaultTTL = 5 * time.Minute
)

// Client is the subset of *redis.Client used here.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// MenuSource loads menu items from the database.
type MenuSource interface {
	ListMenuItems(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
}

// MenuCache serves the available menu from redis and falls back to the
// source on a miss or any redis error. A nil client disables caching.
type MenuCache struct {
	source MenuSource
	client Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewMenuCache(source MenuSource, client Client, ttl time.Duration) *MenuCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MenuCache{
		source: source,
		client: client,
		ttl:    ttl,
		log:    logger.Global().WithComponent("cache"),
	}
}

// AvailableMenu returns the items customers can order.
func (c *MenuCache) AvailableMenu(ctx context.Context) ([]domain.MenuItem, error) {
	if c.client == nil {
		return c.source.ListMenuItems(ctx, true)
	}

	raw, err := c.client.Get(ctx, menuKey).Bytes()
	switch {
	case err == nil:
		var items []domain.MenuItem
		if jerr := json.Unmarshal(raw, &items); jerr == nil {
			return items, nil
		}
		c.log.Warn("discarding corrupt menu snapshot")
	case !errors.Is(err, redis.Nil):
		c.log.Warn("menu cache read failed", zap.Error(err))
	}

	items, err := c.source.ListMenuItems(ctx, true)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return items, nil
	}
	if err := c.client.Set(ctx, menuKey, data, c.ttl).Err(); err != nil {
		c.log.Warn("menu cache write failed", zap.Error(err))
	}
	return items, nil
}

// Invalidate drops the snapshot after any menu change.
func (c *MenuCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, menuKey).Err()
}

// NewRedisClient connects to addr and verifies it with a ping.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
