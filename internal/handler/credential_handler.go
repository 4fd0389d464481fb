package handler

import (
	"net/http"

	"carbon-chat-go/internal/middleware"
	"carbon-chat-go/internal/service"

	"github.com/gin-gonic/gin"
)

// CredentialHandler 管理当前会话的 API key。
type CredentialHandler struct {
	credentialService service.CredentialService
}

// NewCredentialHandler 创建一个新的 CredentialHandler 实例。
func NewCredentialHandler(credentialService service.CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

// SaveCredentialRequest 定义了保存凭证 API 的请求体结构。
type SaveCredentialRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// Save 保存凭证。
func (h *CredentialHandler) Save(c *gin.Context) {
	var req SaveCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "credential is required", "data": nil})
		return
	}
	if err := h.credentialService.Save(c.Request.Context(), c.GetString(middleware.SessionIDKey), req.Credential); err != nil {
		respondError(c, err, "Failed to save credential")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"hasCredential": true}})
}

// Status 返回凭证是否存在。
func (h *CredentialHandler) Status(c *gin.Context) {
	ok, err := h.credentialService.Status(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		respondError(c, err, "Failed to read credential status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"hasCredential": ok}})
}

// Clear 删除凭证。
func (h *CredentialHandler) Clear(c *gin.Context) {
	if err := h.credentialService.Clear(c.Request.Context(), c.GetString(middleware.SessionIDKey)); err != nil {
		respondError(c, err, "Failed to clear credential")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"hasCredential": false}})
}
