package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CredentialRepository 保存每个会话的凭证哈希，只关心其是否存在。
type CredentialRepository interface {
	Save(ctx context.Context, sessionID, credentialHash string) error
	Get(ctx context.Context, sessionID string) (string, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisCredentialRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewCredentialRepository 创建一个基于 Redis 的 CredentialRepository。
func NewCredentialRepository(redisClient *redis.Client, ttl time.Duration) CredentialRepository {
	return &redisCredentialRepository{redisClient: redisClient, ttl: ttl}
}

// CredentialKey 返回会话凭证在 Redis 中的固定 key。
func CredentialKey(sessionID string) string {
	return fmt.Sprintf("carbon_chat:credential:%s", sessionID)
}

func (r *redisCredentialRepository) Save(ctx context.Context, sessionID, credentialHash string) error {
	if err := r.redisClient.Set(ctx, CredentialKey(sessionID), credentialHash, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *redisCredentialRepository) Get(ctx context.Context, sessionID string) (string, bool, error) {
	value, err := r.redisClient.Get(ctx, CredentialKey(sessionID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get credential: %w", err)
	}
	return value, true, nil
}

func (r *redisCredentialRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.redisClient.Del(ctx, CredentialKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
