package handler

import (
	"net/http"

	"carbon-chat-go/internal/service"
	"carbon-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责创建聊天会话。
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create 创建会话并返回会话 ID 与 token。
func (h *SessionHandler) Create(c *gin.Context) {
	session, tokenString, err := h.sessionService.Create(c.Request.Context())
	if err != nil {
		log.Errorf("Create session failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to create session", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"sessionId": session.ID,
			"createdAt": session.CreatedAt,
			"token":     tokenString,
		},
	})
}
