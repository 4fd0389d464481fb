// Package main 是应用程序的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carbon-chat-go/internal/config"
	"carbon-chat-go/internal/handler"
	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/pipeline"
	"carbon-chat-go/internal/repository"
	"carbon-chat-go/internal/service"
	"carbon-chat-go/pkg/database"
	"carbon-chat-go/pkg/es"
	"carbon-chat-go/pkg/kafka"
	"carbon-chat-go/pkg/llm"
	"carbon-chat-go/pkg/log"
	"carbon-chat-go/pkg/storage"
	"carbon-chat-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与外部服务
	database.InitMySQL(cfg.Database.MySQL.DSN, &model.FootprintRecord{})
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	transcriptStore := storage.InitMinIO(cfg.MinIO)
	messageStore, err := es.InitES(cfg.Elasticsearch)
	if err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	publisher := kafka.NewPublisher(cfg.Kafka)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}()

	// 4. 初始化 Repository
	historyTTL := time.Duration(cfg.Chat.HistoryTTLHours) * time.Hour
	conversationRepo := repository.NewConversationRepository(database.RDB, historyTTL)
	credentialRepo := repository.NewCredentialRepository(database.RDB, historyTTL)
	footprintRepo := repository.NewFootprintRepository(database.DB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.SessionExpireHours)
	var assistant llm.Client
	if cfg.LLM.Enabled {
		assistant = llm.NewClient(cfg.LLM)
		log.Infof("远程助手已启用, model: %s", cfg.LLM.Model)
	}
	sessionService := service.NewSessionService(conversationRepo, jwtManager)
	chatService := service.NewChatService(
		conversationRepo,
		credentialRepo,
		publisher,
		messageStore,
		transcriptStore,
		assistant,
		service.ChatOptions{
			RequireCredential: cfg.Chat.RequireCredential,
			SystemPrompt:      cfg.LLM.SystemPrompt,
		},
	)
	credentialService := service.NewCredentialService(credentialRepo)
	footprintService := service.NewFootprintService(footprintRepo)

	// 6. 启动后台 Kafka 消费者，将足迹事件落库
	processor := pipeline.NewProcessor(footprintRepo)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		kafka.StartConsumer(consumerCtx, cfg.Kafka, database.RDB, processor)
	}()

	// 7. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(handler.Services{
		Session:    sessionService,
		Chat:       chatService,
		Credential: credentialService,
		Footprint:  footprintService,
		JWT:        jwtManager,
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-ctx.Done():
		log.Warnf("等待 Kafka 消费者退出超时")
	}
	log.Info("服务已优雅关闭")
}
