package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"carbon-chat-go/internal/footprint"
	"carbon-chat-go/internal/interpreter"
	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/repository"
	"carbon-chat-go/pkg/llm"
	"carbon-chat-go/pkg/log"
	"carbon-chat-go/pkg/storage"
	"carbon-chat-go/pkg/tasks"

	"github.com/google/uuid"
)

// CredentialPrompt 是会话缺少凭证时的固定回复。
const CredentialPrompt = "Please provide your API key to start chatting."

// 由会话控制器而不是规则引擎产生的意图。
const (
	IntentCredentialRequired interpreter.Intent = "credential_required"
	IntentAssistant          interpreter.Intent = "assistant"
)

// 远程助手可见的最近消息条数。
const assistantHistoryWindow = 10

// 会话锁的分片数，会话按 ID 哈希到固定的锁上。
const lockStripes = 64

var (
	ErrEmptyMessage      = errors.New("message must not be empty")
	ErrEmptyQuery        = errors.New("search query must not be empty")
	ErrSearchUnavailable = errors.New("message search is not configured")
	ErrExportUnavailable = errors.New("transcript export is not configured")
)

// EventPublisher 发布足迹事件，由 pkg/kafka 实现。
type EventPublisher interface {
	PublishFootprintEvent(ctx context.Context, event tasks.FootprintEvent) error
}

// MessageIndex 索引并检索聊天消息，由 pkg/es 实现。
type MessageIndex interface {
	IndexMessage(ctx context.Context, doc model.EsMessage) error
	SearchMessages(ctx context.Context, sessionID, query string, size int) ([]model.MessageSearchResult, error)
}

// TranscriptExporter 上传导出的会话记录并返回下载地址，由 pkg/storage 实现。
type TranscriptExporter interface {
	Upload(ctx context.Context, objectName string, data []byte) (string, error)
}

// ChatOptions 控制会话控制器的行为。
type ChatOptions struct {
	RequireCredential bool
	SystemPrompt      string
	SearchSize        int
}

// ChatResult 是一次提交的结果。
type ChatResult struct {
	UserMessage model.ChatMessage    `json:"userMessage"`
	BotMessage  model.ChatMessage    `json:"message"`
	Intent      interpreter.Intent   `json:"intent"`
	Estimates   []footprint.Estimate `json:"estimates,omitempty"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

// ExportResult 描述一次会话导出。
type ExportResult struct {
	ObjectName string `json:"objectName"`
	URL        string `json:"url"`
}

type transcriptExport struct {
	SessionID  string              `json:"sessionId"`
	ExportedAt time.Time           `json:"exportedAt"`
	Messages   []model.ChatMessage `json:"messages"`
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	Submit(ctx context.Context, sessionID, text string) (*ChatResult, error)
	History(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	Suggestions() []string
	Search(ctx context.Context, sessionID, query string) ([]model.MessageSearchResult, error)
	Export(ctx context.Context, sessionID string) (*ExportResult, error)
}

type chatService struct {
	conversationRepo repository.ConversationRepository
	credentialRepo   repository.CredentialRepository
	interpreter      *interpreter.Interpreter
	publisher        EventPublisher
	index            MessageIndex
	exporter         TranscriptExporter
	assistant        llm.Client
	opts             ChatOptions
	now              func() time.Time

	// 同一会话的提交串行执行，保证 transcript 的读改写不丢消息
	locks [lockStripes]sync.Mutex
}

// NewChatService 创建一个新的 ChatService 实例。
// publisher、index、exporter、assistant 均可为 nil，对应功能随之关闭。
func NewChatService(
	conversationRepo repository.ConversationRepository,
	credentialRepo repository.CredentialRepository,
	publisher EventPublisher,
	index MessageIndex,
	exporter TranscriptExporter,
	assistant llm.Client,
	opts ChatOptions,
) ChatService {
	if opts.SearchSize <= 0 {
		opts.SearchSize = 20
	}
	return &chatService{
		conversationRepo: conversationRepo,
		credentialRepo:   credentialRepo,
		interpreter:      interpreter.New(),
		publisher:        publisher,
		index:            index,
		exporter:         exporter,
		assistant:        assistant,
		opts:             opts,
		now:              time.Now,
	}
}

func (s *chatService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Submit 追加用户消息，经过凭证检查与解释器生成回复，再追加机器人消息。
func (s *chatService) Submit(ctx context.Context, sessionID, text string) (*ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.conversationRepo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	history, err := s.conversationRepo.GetConversationHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	userMsg := model.ChatMessage{Text: text, Sender: model.SenderUser, Timestamp: s.now()}

	reply, err := s.reply(ctx, sessionID, history, text)
	if err != nil {
		return nil, err
	}
	botMsg := model.ChatMessage{Text: reply.Text, Sender: model.SenderBot, Timestamp: s.now()}

	history = append(history, userMsg, botMsg)
	if err := s.conversationRepo.UpdateConversationHistory(ctx, sessionID, history); err != nil {
		return nil, fmt.Errorf("failed to save transcript: %w", err)
	}

	s.publishEstimates(ctx, sessionID, reply.Estimates, botMsg.Timestamp)
	s.indexMessages(ctx, sessionID, userMsg, botMsg)

	return &ChatResult{
		UserMessage: userMsg,
		BotMessage:  botMsg,
		Intent:      reply.Intent,
		Estimates:   reply.Estimates,
		Suggestions: reply.Suggestions,
	}, nil
}

// reply 先检查凭证，再交给解释器；解释器无法处理时可选地询问远程助手。
func (s *chatService) reply(ctx context.Context, sessionID string, history []model.ChatMessage, text string) (interpreter.Reply, error) {
	if s.opts.RequireCredential {
		_, ok, err := s.credentialRepo.Get(ctx, sessionID)
		if err != nil {
			return interpreter.Reply{}, fmt.Errorf("failed to check credential: %w", err)
		}
		if !ok {
			return interpreter.Reply{Text: CredentialPrompt, Intent: IntentCredentialRequired}, nil
		}
	}

	reply := s.interpreter.Interpret(text)
	if reply.Intent != interpreter.IntentFallback || s.assistant == nil {
		return reply, nil
	}

	answer, err := s.assistant.Complete(ctx, s.assistantMessages(history, text))
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrTimeout):
			log.Warnf("[ChatService] 远程助手超时, SessionID: %s", sessionID)
		default:
			log.Errorf("[ChatService] 远程助手调用失败, SessionID: %s, Error: %v", sessionID, err)
		}
		return reply, nil
	}
	return interpreter.Reply{Text: answer, Intent: IntentAssistant}, nil
}

func (s *chatService) assistantMessages(history []model.ChatMessage, text string) []llm.Message {
	if len(history) > assistantHistoryWindow {
		history = history[len(history)-assistantHistoryWindow:]
	}
	msgs := make([]llm.Message, 0, len(history)+2)
	if s.opts.SystemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: s.opts.SystemPrompt})
	}
	for _, m := range history {
		role := "user"
		if m.IsBot() {
			role = "assistant"
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Text})
	}
	return append(msgs, llm.Message{Role: "user", Content: text})
}

func (s *chatService) publishEstimates(ctx context.Context, sessionID string, estimates []footprint.Estimate, at time.Time) {
	if s.publisher == nil {
		return
	}
	for _, e := range estimates {
		event := tasks.FootprintEvent{
			EventID:   uuid.NewString(),
			SessionID: sessionID,
			Activity:  string(e.Activity),
			Quantity:  e.Quantity,
			Unit:      string(e.Unit),
			KgCO2:     e.KgCO2,
			CreatedAt: at,
		}
		if err := s.publisher.PublishFootprintEvent(ctx, event); err != nil {
			log.Errorf("[ChatService] 发布足迹事件失败, SessionID: %s, Activity: %s, Error: %v", sessionID, e.Activity, err)
		}
	}
}

func (s *chatService) indexMessages(ctx context.Context, sessionID string, messages ...model.ChatMessage) {
	if s.index == nil {
		return
	}
	for _, m := range messages {
		doc := model.EsMessage{
			MessageID: uuid.NewString(),
			SessionID: sessionID,
			Sender:    string(m.Sender),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
		if err := s.index.IndexMessage(ctx, doc); err != nil {
			log.Errorf("[ChatService] 索引消息失败, SessionID: %s, Error: %v", sessionID, err)
		}
	}
}

// History 返回会话的完整消息记录。
func (s *chatService) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	if _, err := s.conversationRepo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.conversationRepo.GetConversationHistory(ctx, sessionID)
}

// Suggestions 返回兜底回复附带的示例问题。
func (s *chatService) Suggestions() []string {
	return interpreter.Suggestions()
}

// Search 在会话的消息中做全文检索。
func (s *chatService) Search(ctx context.Context, sessionID, query string) ([]model.MessageSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.index == nil {
		return nil, ErrSearchUnavailable
	}
	return s.index.SearchMessages(ctx, sessionID, query, s.opts.SearchSize)
}

// Export 将会话记录序列化为 JSON 上传到对象存储，返回预签名下载地址。
func (s *chatService) Export(ctx context.Context, sessionID string) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, ErrExportUnavailable
	}
	history, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	data, err := json.MarshalIndent(transcriptExport{SessionID: sessionID, ExportedAt: now, Messages: history}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	objectName := storage.ObjectName(sessionID, now)
	url, err := s.exporter.Upload(ctx, objectName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to export transcript: %w", err)
	}
	log.Infof("[ChatService] 会话记录已导出, SessionID: %s, Object: %s", sessionID, objectName)
	return &ExportResult{ObjectName: objectName, URL: url}, nil
}
