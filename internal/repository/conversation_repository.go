// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carbon-chat-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 表示会话不存在或已过期。
var ErrSessionNotFound = errors.New("session not found")

// ConversationRepository 定义了会话与对话记录的操作接口。
type ConversationRepository interface {
	CreateSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	UpdateConversationHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
// ttl 为会话数据的过期时间，每次写入对话记录时顺延。
func NewConversationRepository(redisClient *redis.Client, ttl time.Duration) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("carbon_chat:session:%s", sessionID)
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("carbon_chat:session:%s:transcript", sessionID)
}

// CreateSession 在 Redis 中登记一个新会话。
func (r *redisConversationRepository) CreateSession(ctx context.Context, session model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.redisClient.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

// GetSession 读取会话，不存在时返回 ErrSessionNotFound。
func (r *redisConversationRepository) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := r.redisClient.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// GetConversationHistory 从 Redis 获取对话记录，按发送顺序排列。
func (r *redisConversationRepository) GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, transcriptKey(sessionID)).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}

// UpdateConversationHistory 覆盖写入完整的对话记录，并顺延会话及其凭证的过期时间。
func (r *redisConversationRepository) UpdateConversationHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error {
	jsonData, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	pipe := r.redisClient.TxPipeline()
	pipe.Set(ctx, transcriptKey(sessionID), jsonData, r.ttl)
	pipe.Expire(ctx, sessionKey(sessionID), r.ttl)
	// 凭证只提交一次，必须与会话同生命周期
	pipe.Expire(ctx, CredentialKey(sessionID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}
