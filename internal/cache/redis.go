package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"example.com/storefront/services/orders/config"
)

// AvailabilitySnapshot is the cached view of a product's stock position.
type AvailabilitySnapshot struct {
	ProductID         string `json:"product_id"`
	SKU               string `json:"sku"`
	QuantityOnHand    int    `json:"quantity_on_hand"`
	QuantityAvailable int    `json:"quantity_available"`
	NeedsReorder      bool   `json:"needs_reorder"`
}

// RedisCache holds short-lived availability snapshots so stock reads do not
// hit the database on every request. Entries expire on their own; writes
// through commands also invalidate eagerly.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{
		client:  client,
		ttl:     cfg.TTL,
		enabled: true,
	}, nil
}

// GetAvailability returns the cached snapshot for a product. The boolean
// reports whether the cache held one.
func (c *RedisCache) GetAvailability(ctx context.Context, productID string) (AvailabilitySnapshot, bool, error) {
	if c == nil || !c.enabled {
		return AvailabilitySnapshot{}, false, nil
	}

	data, err := c.client.Get(ctx, availabilityKey(productID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return AvailabilitySnapshot{}, false, nil
		}
		return AvailabilitySnapshot{}, false, errors.Wrap(err, "failed to get value from Redis")
	}

	var snapshot AvailabilitySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return AvailabilitySnapshot{}, false, errors.Wrap(err, "failed to unmarshal cached value")
	}
	return snapshot, true, nil
}

// SetAvailability stores a snapshot under the configured TTL.
func (c *RedisCache) SetAvailability(ctx context.Context, snapshot AvailabilitySnapshot) error {
	if c == nil || !c.enabled {
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value for caching")
	}

	if err := c.client.Set(ctx, availabilityKey(snapshot.ProductID), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to set value in Redis")
	}
	return nil
}

// InvalidateAvailability drops the snapshot for a product after a stock change.
func (c *RedisCache) InvalidateAvailability(ctx context.Context, productID string) error {
	if c == nil || !c.enabled {
		return nil
	}
	return c.client.Del(ctx, availabilityKey(productID)).Err()
}

func availabilityKey(productID string) string {
	return fmt.Sprintf("inventory:product:%s", productID)
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if c == nil || !c.enabled || c.client == nil {
		return nil
	}
	return c.client.Close()
}
