package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/config"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"

	"github.com/redis/go-redis/v9"
)

const salesKeyPrefix = "sales:"

// SalesCounter keeps per-item sales in a ZSET keyed by calendar date, so the
// reporting side can read top sellers with a single range query.
type SalesCounter struct {
	client *redis.Client
	expire time.Duration
}

func Connect(ctx context.Context, cfg config.RedisConfig) (*SalesCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &SalesCounter{
		client: client,
		expire: time.Duration(cfg.SalesExpireDays) * 24 * time.Hour,
	}, nil
}

var _ interfaces.SalesCounter = (*SalesCounter)(nil)

func (c *SalesCounter) IncrementDailySales(ctx context.Context, date time.Time, itemName string, qty int) error {
	key := salesKeyPrefix + date.Format("2006-01-02")

	if err := c.client.ZIncrBy(ctx, key, float64(qty), itemName).Err(); err != nil {
		return fmt.Errorf("failed to increment sales counter: %w", err)
	}
	if err := c.client.Expire(ctx, key, c.expire).Err(); err != nil {
		return fmt.Errorf("failed to set sales counter expiry: %w", err)
	}
	return nil
}

func (c *SalesCounter) Close() error {
	return c.client.Close()
}
