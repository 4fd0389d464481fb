package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/repository"
)

func TestCreateSessionSeedsWelcome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, tokenString, err := env.sessions.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	claims, err := env.jwt.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID)

	history, err := env.convRepo.GetConversationHistory(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, WelcomeMessage, history[0].Text)
	assert.Equal(t, model.SenderBot, history[0].Sender)

	got, err := env.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestCreateSessionIDsAreUnique(t *testing.T) {
	env := newTestEnv(t)
	a := env.newSession(t)
	b := env.newSession(t)
	assert.NotEqual(t, a, b)
}

func TestGetMissingSession(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
