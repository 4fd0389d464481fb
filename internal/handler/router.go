package handler

import (
	"carbon-chat-go/internal/middleware"
	"carbon-chat-go/internal/service"
	"carbon-chat-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// Services 汇集路由所需的全部业务依赖。
type Services struct {
	Session    service.SessionService
	Chat       service.ChatService
	Credential service.CredentialService
	Footprint  service.FootprintService
	JWT        *token.JWTManager
}

// NewRouter 创建路由引擎并注册全部路由。
func NewRouter(s Services) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	sessionHandler := NewSessionHandler(s.Session)
	chatHandler := NewChatHandler(s.Chat, s.Session, s.JWT)
	credentialHandler := NewCredentialHandler(s.Credential)
	footprintHandler := NewFootprintHandler(s.Footprint)
	sessionAuth := middleware.SessionAuth(s.JWT, s.Session)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/sessions", sessionHandler.Create)

		// 计算器路由，无需认证
		fp := apiV1.Group("/footprint")
		{
			fp.GET("/activities", footprintHandler.Activities)
			fp.GET("/estimate", footprintHandler.Estimate)
			fp.GET("/records", sessionAuth, footprintHandler.Records)
		}

		chat := apiV1.Group("/chat")
		chat.Use(sessionAuth)
		{
			chat.GET("/messages", chatHandler.GetMessages)
			chat.POST("/messages", chatHandler.SendMessage)
			chat.GET("/suggestions", chatHandler.GetSuggestions)
			chat.GET("/search", chatHandler.Search)
			chat.POST("/export", chatHandler.Export)
		}

		credential := apiV1.Group("/credential")
		credential.Use(sessionAuth)
		{
			credential.GET("", credentialHandler.Status)
			credential.PUT("", credentialHandler.Save)
			credential.DELETE("", credentialHandler.Clear)
		}
	}

	// Chat 路由 (WebSocket)，token 通过路径传递
	r.GET("/chat/:token", chatHandler.Handle)
	return r
}
