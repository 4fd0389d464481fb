package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-chat-go/internal/repository"
	"carbon-chat-go/pkg/hash"
)

func TestCredentialLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewCredentialService(env.credRepo)
	id := env.newSession(t)

	ok, err := svc.Status(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Save(ctx, id, "  sk-live-123  "))
	ok, err = svc.Status(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	// 只保存哈希，原文不落盘
	stored, err := env.mr.Get(repository.CredentialKey(id))
	require.NoError(t, err)
	assert.NotContains(t, stored, "sk-live-123")
	assert.True(t, hash.CheckSecretHash("sk-live-123", stored))

	require.NoError(t, svc.Clear(ctx, id))
	ok, err = svc.Status(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, svc.Clear(ctx, id))
}

func TestSaveEmptyCredential(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCredentialService(env.credRepo)
	assert.ErrorIs(t, svc.Save(context.Background(), "s1", "   "), ErrEmptyCredential)
}
