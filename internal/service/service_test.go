package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/repository"
	"carbon-chat-go/pkg/llm"
	"carbon-chat-go/pkg/tasks"
	"carbon-chat-go/pkg/token"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []tasks.FootprintEvent
	err    error
}

func (f *fakePublisher) PublishFootprintEvent(_ context.Context, event tasks.FootprintEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    []model.EsMessage
	results []model.MessageSearchResult
	err     error
	gotSize int
}

func (f *fakeIndex) IndexMessage(_ context.Context, doc model.EsMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeIndex) SearchMessages(_ context.Context, _, _ string, size int) ([]model.MessageSearchResult, error) {
	f.gotSize = size
	return f.results, f.err
}

type fakeExporter struct {
	objectName string
	data       []byte
	err        error
}

func (f *fakeExporter) Upload(_ context.Context, objectName string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.objectName = objectName
	f.data = data
	return "https://minio.local/" + objectName, nil
}

type fakeAssistant struct {
	answer   string
	err      error
	messages []llm.Message
	calls    int
}

func (f *fakeAssistant) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.calls++
	f.messages = messages
	return f.answer, f.err
}

type testEnv struct {
	mr        *miniredis.Miniredis
	convRepo  repository.ConversationRepository
	credRepo  repository.CredentialRepository
	sessions  SessionService
	jwt       *token.JWTManager
	publisher *fakePublisher
	index     *fakeIndex
	exporter  *fakeExporter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	convRepo := repository.NewConversationRepository(client, time.Hour)
	jwtManager := token.NewJWTManager("test-secret", 1)
	return &testEnv{
		mr:        mr,
		convRepo:  convRepo,
		credRepo:  repository.NewCredentialRepository(client, time.Hour),
		sessions:  NewSessionService(convRepo, jwtManager),
		jwt:       jwtManager,
		publisher: &fakePublisher{},
		index:     &fakeIndex{},
		exporter:  &fakeExporter{},
	}
}

func (e *testEnv) chat(assistant llm.Client, opts ChatOptions) ChatService {
	return NewChatService(e.convRepo, e.credRepo, e.publisher, e.index, e.exporter, assistant, opts)
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	session, _, err := e.sessions.Create(context.Background())
	require.NoError(t, err)
	return session.ID
}

var errBoom = errors.New("boom")
