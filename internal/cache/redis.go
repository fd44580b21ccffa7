package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avdonin/shareit/config"
	"github.com/avdonin/shareit/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	itemsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, itemsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		itemsTTL: itemsTTL,
	}
}

func (c *RedisCache) GetOwnerItems(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	data, err := c.client.Get(ctx, ownerItemsKey(ownerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *RedisCache) SetOwnerItems(ctx context.Context, ownerID int64, items []domain.Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ownerItemsKey(ownerID), payload, c.itemsTTL).Err()
}

func (c *RedisCache) InvalidateOwnerItems(ctx context.Context, ownerID int64) error {
	return c.client.Del(ctx, ownerItemsKey(ownerID)).Err()
}

func ownerItemsKey(ownerID int64) string {
	return fmt.Sprintf("cache:items:owner:%d", ownerID)
}
