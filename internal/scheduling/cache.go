package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/appointment-agent/pkg/logging"
)

// SlotCache stores availability replies per DD/MM date. Implementations treat
// storage errors as cache misses.
type SlotCache interface {
	Get(ctx context.Context, dateMonth string) (*Availability, bool)
	Set(ctx context.Context, dateMonth string, availability *Availability)
	Invalidate(ctx context.Context, dateMonth string)
}

// RedisSlotCache is a SlotCache backed by redis string keys with a TTL.
type RedisSlotCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisSlotCache creates a redis-backed slot cache.
func NewRedisSlotCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisSlotCache {
	if client == nil {
		panic("scheduling: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisSlotCache{redis: client, ttl: ttl, logger: logger.Component("slot_cache")}
}

func (c *RedisSlotCache) Get(ctx context.Context, dateMonth string) (*Availability, bool) {
	data, err := c.redis.Get(ctx, slotKey(dateMonth)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("slot cache read failed", "date_month", dateMonth, "error", err)
		}
		return nil, false
	}
	var availability Availability
	if err := json.Unmarshal(data, &availability); err != nil {
		c.logger.Warn("slot cache entry undecodable", "date_month", dateMonth, "error", err)
		return nil, false
	}
	return &availability, true
}

func (c *RedisSlotCache) Set(ctx context.Context, dateMonth string, availability *Availability) {
	if availability == nil {
		return
	}
	data, err := json.Marshal(availability)
	if err != nil {
		c.logger.Warn("slot cache encode failed", "date_month", dateMonth, "error", err)
		return
	}
	if err := c.redis.Set(ctx, slotKey(dateMonth), data, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", "date_month", dateMonth, "error", err)
	}
}

func (c *RedisSlotCache) Invalidate(ctx context.Context, dateMonth string) {
	if err := c.redis.Del(ctx, slotKey(dateMonth)).Err(); err != nil {
		c.logger.Warn("slot cache invalidate failed", "date_month", dateMonth, "error", err)
	}
}

func slotKey(dateMonth string) string {
	return "available_slots:" + dateMonth
}
