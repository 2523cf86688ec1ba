package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix = "oauth:state:"
	stateTTL       = 10 * time.Minute
)

// StateStore OAuth state 参数的生成与校验，防 CSRF 与重放
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

// GenerateState 生成随机 state 并写入 Redis（带 TTL）
func (s *StateStore) GenerateState(ctx context.Context) (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	state := hex.EncodeToString(bytes)

	key := stateKeyPrefix + state
	if err := s.rdb.Set(ctx, key, 1, stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return state, nil
}

// ValidateState 校验 state。校验通过即删除，同一 state 不能使用两次。
func (s *StateStore) ValidateState(ctx context.Context, state string) error {
	if state == "" {
		return fmt.Errorf("empty state parameter")
	}

	key := stateKeyPrefix + state
	deleted, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to validate state: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("invalid or expired state")
	}

	return nil
}
