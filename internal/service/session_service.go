// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"time"

	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/repository"
	"carbon-chat-go/pkg/log"
	"carbon-chat-go/pkg/token"

	"github.com/google/uuid"
)

// WelcomeMessage 是每个新会话的第一条机器人消息。
const WelcomeMessage = "Hello! I'm your Carbon Offset Calculator. I can help you understand your carbon footprint. Try asking about your car travel, flights, electricity usage, or food consumption!"

// SessionService 定义了会话生命周期的业务操作。
type SessionService interface {
	Create(ctx context.Context) (*model.Session, string, error)
	Get(ctx context.Context, sessionID string) (*model.Session, error)
}

type sessionService struct {
	conversationRepo repository.ConversationRepository
	jwtManager       *token.JWTManager
	now              func() time.Time
}

// NewSessionService 创建一个新的 SessionService。
func NewSessionService(conversationRepo repository.ConversationRepository, jwtManager *token.JWTManager) SessionService {
	return &sessionService{
		conversationRepo: conversationRepo,
		jwtManager:       jwtManager,
		now:              time.Now,
	}
}

// Create 创建会话，写入欢迎消息并签发会话 token。
func (s *sessionService) Create(ctx context.Context) (*model.Session, string, error) {
	now := s.now()
	session := model.Session{ID: uuid.NewString(), CreatedAt: now}

	if err := s.conversationRepo.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}
	welcome := []model.ChatMessage{{Text: WelcomeMessage, Sender: model.SenderBot, Timestamp: now}}
	if err := s.conversationRepo.UpdateConversationHistory(ctx, session.ID, welcome); err != nil {
		return nil, "", fmt.Errorf("failed to seed transcript: %w", err)
	}

	tokenString, err := s.jwtManager.GenerateToken(session.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	log.Infof("[SessionService] 新会话已创建, SessionID: %s", session.ID)
	return &session, tokenString, nil
}

// Get 读取会话，会话不存在或已过期时返回 repository.ErrSessionNotFound。
func (s *sessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.conversationRepo.GetSession(ctx, sessionID)
}
