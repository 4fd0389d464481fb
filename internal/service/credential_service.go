package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carbon-chat-go/internal/repository"
	"carbon-chat-go/pkg/hash"
	"carbon-chat-go/pkg/log"
)

// ErrEmptyCredential 表示提交的凭证为空。
var ErrEmptyCredential = errors.New("credential must not be empty")

// CredentialService 管理会话的 API key。凭证只以哈希形式保存，仅用于判断是否存在。
type CredentialService interface {
	Save(ctx context.Context, sessionID, credential string) error
	Status(ctx context.Context, sessionID string) (bool, error)
	Clear(ctx context.Context, sessionID string) error
}

type credentialService struct {
	credentialRepo repository.CredentialRepository
}

// NewCredentialService 创建一个新的 CredentialService。
func NewCredentialService(credentialRepo repository.CredentialRepository) CredentialService {
	return &credentialService{credentialRepo: credentialRepo}
}

// Save 保存凭证的 bcrypt 哈希，覆盖已有值。
func (s *credentialService) Save(ctx context.Context, sessionID, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrEmptyCredential
	}
	hashed, err := hash.HashSecret(credential)
	if err != nil {
		return fmt.Errorf("failed to hash credential: %w", err)
	}
	if err := s.credentialRepo.Save(ctx, sessionID, hashed); err != nil {
		return err
	}
	log.Infof("[CredentialService] 会话凭证已保存, SessionID: %s", sessionID)
	return nil
}

// Status 报告会话是否已保存凭证。
func (s *credentialService) Status(ctx context.Context, sessionID string) (bool, error) {
	_, ok, err := s.credentialRepo.Get(ctx, sessionID)
	return ok, err
}

// Clear 删除会话凭证，凭证不存在时也视为成功。
func (s *credentialService) Clear(ctx context.Context, sessionID string) error {
	return s.credentialRepo.Delete(ctx, sessionID)
}
