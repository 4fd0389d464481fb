package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"carbon-chat-go/pkg/log"
)

func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	log.SetLogger(zap.New(core))
	t.Cleanup(func() { log.SetLogger(zap.NewNop()) })
	return logs
}

func TestRequestLoggerHidesSecrets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs(t)

	const secret = "eyJhbGciOiJIUzI1NiJ9.session.signature"
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/chat/:token", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": secret})
	})
	r.PUT("/api/v1/credential", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/chat/"+secret, nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil),
		httptest.NewRequest(http.MethodPut, "/api/v1/credential", strings.NewReader(`{"apiKey":"`+secret+`"}`)),
	}
	for _, req := range requests {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.FilterMessage("HTTP Request Log").All()
	require.Len(t, entries, len(requests))
	assert.Equal(t, "/chat/:token", entries[0].ContextMap()["path"])
	for _, e := range entries {
		for k, v := range e.ContextMap() {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, secret, "field %s of %s", k, e.ContextMap()["path"])
			}
		}
	}
}

func TestRequestLoggerKeepsOrdinaryBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs(t)

	r := gin.New()
	r.Use(RequestLogger())
	r.POST("/api/v1/chat/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	r.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/v1/chat/messages", strings.NewReader(`{"text":"car 50km"}`)))

	entries := logs.FilterMessage("HTTP Request Log").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/v1/chat/messages", fields["path"])
	assert.Equal(t, `{"text":"car 50km"}`, fields["requestBody"])
	assert.Contains(t, fields["responseBody"], "ok")
}
