package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkrylova/aftersale/config"
	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	policiesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, policiesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		policiesTTL: policiesTTL,
	}
}

// AcquireSubmitLock serializes submissions against one (order, passenger,
// segment) triple so two concurrent requests cannot both pass the open
// application check.
func (c *RedisCache) AcquireSubmitLock(ctx context.Context, orderID, passengerID, segmentID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submitLockKey(orderID, passengerID, segmentID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSubmitLock(ctx context.Context, orderID, passengerID, segmentID int64) error {
	return c.client.Del(ctx, submitLockKey(orderID, passengerID, segmentID)).Err()
}

func (c *RedisCache) GetPolicies(ctx context.Context, key string) ([]domain.FeePolicy, error) {
	data, err := c.client.Get(ctx, policiesKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var policies []domain.FeePolicy
	if err := json.Unmarshal(data, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

func (c *RedisCache) SetPolicies(ctx context.Context, key string, policies []domain.FeePolicy) error {
	payload, err := json.Marshal(policies)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, policiesKey(key), payload, c.policiesTTL).Err()
}

func policiesKey(key string) string {
	return "cache:policies:" + key
}

func submitLockKey(orderID, passengerID, segmentID int64) string {
	return fmt.Sprintf("lock:application:%d:%d:%d", orderID, passengerID, segmentID)
}
