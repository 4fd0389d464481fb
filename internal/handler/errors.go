package handler

import (
	"errors"
	"net/http"

	"carbon-chat-go/internal/repository"
	"carbon-chat-go/internal/service"
	"carbon-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// statusFor 将业务错误映射为 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrEmptyCredential),
		errors.Is(err, service.ErrUnknownActivity),
		errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSearchUnavailable),
		errors.Is(err, service.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage 对客户端可处理的错误返回其原文，其余错误返回 fallback。
func errorMessage(err error, fallback string) string {
	if statusFor(err) == http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}

func respondError(c *gin.Context, err error, fallback string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, gin.H{"code": code, "message": errorMessage(err, fallback), "data": nil})
}
