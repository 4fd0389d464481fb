// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"carbon-chat-go/internal/repository"
	"carbon-chat-go/internal/service"
	"carbon-chat-go/pkg/log"
	"carbon-chat-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// SessionIDKey 是会话 ID 在 gin 上下文中的 key。
const SessionIDKey = "sessionID"

// SessionAuth 创建一个 Gin 中间件，用于会话 token 认证。
// 它会从请求头中提取 token，验证其有效性并确认会话仍然存在，然后将会话 ID 存入 Gin 的上下文中。
func SessionAuth(jwtManager *token.JWTManager, sessionService service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		// Token 以 "Bearer <token>" 的形式提供
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abort(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		session, err := sessionService.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				abort(c, http.StatusUnauthorized, "session not found or expired")
				return
			}
			log.Errorf("SessionAuth: failed to load session %s: %v", claims.SessionID, err)
			abort(c, http.StatusInternalServerError, "failed to load session")
			return
		}

		c.Set(SessionIDKey, session.ID)
		c.Set("claims", claims)
		c.Next()
	}
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"code": code, "message": message, "data": nil})
}
