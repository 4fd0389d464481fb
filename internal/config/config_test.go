package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAppliesDefaultsAndEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
jwt:
  secret: "file-secret"
kafka:
  brokers: "kafka:9092"
  topic: "footprint-estimates"
llm:
  enabled: true
  model: "deepseek-chat"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CARBONCHAT_JWT_SECRET", "env-secret")
	t.Setenv("CARBONCHAT_CHAT_HISTORY_TTL_HOURS", "12")

	Init(path)

	assert.Equal(t, "9090", Conf.Server.Port)
	assert.Equal(t, "release", Conf.Server.Mode)
	assert.Equal(t, "env-secret", Conf.JWT.Secret)
	assert.Equal(t, 24, Conf.JWT.SessionExpireHours)
	assert.Equal(t, "carbon-chat-consumer", Conf.Kafka.GroupID)
	assert.True(t, Conf.LLM.Enabled)
	assert.Equal(t, 10, Conf.LLM.TimeoutSeconds)
	assert.True(t, Conf.Chat.RequireCredential)
	assert.Equal(t, 12, Conf.Chat.HistoryTTLHours)
	assert.Equal(t, 60, Conf.MinIO.PresignExpireMins)
}

func TestInitPanicsOnMissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	assert.Panics(t, func() { Init(filepath.Join(t.TempDir(), "missing.yaml")) })
}
