// Package cache holds the optional redis-backed cart badge counter. When
// disabled the cart service falls back to counting rows in the database.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"agriconnect/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CartCounts caches per-consumer cart item counts in redis.
type CartCounts struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCartCounts connects to redis and returns a cart count cache.
func NewCartCounts(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*CartCounts, error) {
	logger = logger.With().Str("component", "cart-count-cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("redis cart count cache initialised")

	return &CartCounts{
		client: client,
		ttl:    10 * time.Minute,
		logger: logger,
	}, nil
}

func key(consumerID uuid.UUID) string {
	return "cart_count:" + consumerID.String()
}

// Get returns the cached count for a consumer. The second return value is
// false on a miss.
func (c *CartCounts) Get(ctx context.Context, consumerID uuid.UUID) (int, bool) {
	val, err := c.client.Get(ctx, key(consumerID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("failed to read cart count from redis")
		}
		return 0, false
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}

	return count, true
}

// Set stores the count for a consumer.
func (c *CartCounts) Set(ctx context.Context, consumerID uuid.UUID, count int) {
	if err := c.client.Set(ctx, key(consumerID), count, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to write cart count to redis")
	}
}

// Invalidate drops the cached count for a consumer. Called on every cart
// mutation so stale badges never survive a write.
func (c *CartCounts) Invalidate(ctx context.Context, consumerID uuid.UUID) {
	if err := c.client.Del(ctx, key(consumerID)).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate cart count in redis")
	}
}

// Close releases the redis connection.
func (c *CartCounts) Close() error {
	return c.client.Close()
}
