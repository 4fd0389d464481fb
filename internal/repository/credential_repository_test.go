package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	repo := NewCredentialRepository(client, time.Hour)

	_, ok, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Save(ctx, "s1", "hashed"))
	assert.True(t, mr.Exists("carbon_chat:credential:s1"))

	value, ok, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hashed", value)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, ok, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}
