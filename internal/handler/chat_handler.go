// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"carbon-chat-go/internal/middleware"
	"carbon-chat-go/internal/repository"
	"carbon-chat-go/internal/service"
	"carbon-chat-go/pkg/log"
	"carbon-chat-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatHandler 负责处理聊天相关的 REST 请求与 WebSocket 连接。
type ChatHandler struct {
	chatService    service.ChatService
	sessionService service.SessionService
	jwtManager     *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, sessionService service.SessionService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		sessionService: sessionService,
		jwtManager:     jwtManager,
	}
}

// SendMessageRequest 定义了发送消息 API 的请求体结构。
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage 提交一条用户消息并返回机器人的回复。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "text is required", "data": nil})
		return
	}

	res, err := h.chatService.Submit(c.Request.Context(), c.GetString(middleware.SessionIDKey), req.Text)
	if err != nil {
		respondError(c, err, "Failed to process message")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": res})
}

// GetMessages 返回会话的完整消息记录。
func (h *ChatHandler) GetMessages(c *gin.Context) {
	history, err := h.chatService.History(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		respondError(c, err, "Failed to retrieve conversation history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": history})
}

// GetSuggestions 返回示例问题列表。
func (h *ChatHandler) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": h.chatService.Suggestions()})
}

// Search 在当前会话的消息中做全文检索。
func (h *ChatHandler) Search(c *gin.Context) {
	results, err := h.chatService.Search(c.Request.Context(), c.GetString(middleware.SessionIDKey), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to search messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": results})
}

// Export 导出当前会话并返回下载地址。
func (h *ChatHandler) Export(c *gin.Context) {
	res, err := h.chatService.Export(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		respondError(c, err, "Failed to export transcript")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": res})
}

type socketRequest struct {
	Text string `json:"text"`
}

// Handle 处理一个传入的 WebSocket 连接。每个文本帧是一条用户消息，
// 既可以是纯文本，也可以是 {"text": "..."} 形式的 JSON。
func (h *ChatHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "invalid token", "data": nil})
		return
	}
	sessionID := claims.SessionID
	if _, err := h.sessionService.Get(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "session not found or expired", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，会话: %s", sessionID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		text := string(message)
		if len(message) > 0 && message[0] == '{' {
			var req socketRequest
			if err := json.Unmarshal(message, &req); err == nil {
				text = req.Text
			}
		}

		res, err := h.chatService.Submit(c.Request.Context(), sessionID, text)
		if err != nil {
			log.Errorf("处理 WebSocket 消息失败: %v", err)
			writeJSON(conn, gin.H{"error": errorMessage(err, "Failed to process message")})
			sendCompletion(conn)
			if errors.Is(err, repository.ErrSessionNotFound) {
				break
			}
			continue
		}

		writeJSON(conn, gin.H{
			"type":        "message",
			"message":     res.BotMessage,
			"intent":      res.Intent,
			"estimates":   res.Estimates,
			"suggestions": res.Suggestions,
		})
		sendCompletion(conn)
	}
}

func sendCompletion(conn *websocket.Conn) {
	writeJSON(conn, gin.H{
		"type":      "completion",
		"status":    "finished",
		"message":   "response completed",
		"timestamp": time.Now().UnixMilli(),
	})
}

func writeJSON(conn *websocket.Conn, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("序列化 WebSocket 消息失败: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("写入 WebSocket 消息失败: %v", err)
	}
}
