package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/quackr/quack_auth_server/internal/model/dto"
)

const popularUsersKey = "cache:popular_users"

// PopularCache 人气榜读穿透缓存。
// 不设 TTL，唯一的失效路径是每日定时任务的 Clear。
type PopularCache struct {
	rdb *redis.Client
}

func NewPopularCache(rdb *redis.Client) *PopularCache {
	return &PopularCache{rdb: rdb}
}

// Get 读取缓存的榜单。未命中返回 (nil, nil)。
func (c *PopularCache) Get(ctx context.Context) ([]dto.UserDetail, error) {
	data, err := c.rdb.Get(ctx, popularUsersKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get popular cache: %w", err)
	}

	var users []dto.UserDetail
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal popular cache: %w", err)
	}
	return users, nil
}

// Set 写入榜单。并发重建时后写覆盖先写，结果等价。
func (c *PopularCache) Set(ctx context.Context, users []dto.UserDetail) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to marshal popular cache: %w", err)
	}
	return c.rdb.Set(ctx, popularUsersKey, data, 0).Err()
}

// Clear 清空榜单缓存，由定时任务或手动触发调用
func (c *PopularCache) Clear(ctx context.Context) error {
	return c.rdb.Del(ctx, popularUsersKey).Err()
}
