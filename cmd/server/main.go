package main

import (
	"fmt"
	"log"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/api"
	"github.com/quackr/quack_auth_server/internal/api/handler"
	"github.com/quackr/quack_auth_server/internal/database"
	"github.com/quackr/quack_auth_server/internal/pkg/cache"
	"github.com/quackr/quack_auth_server/internal/pkg/cron"
	"github.com/quackr/quack_auth_server/internal/pkg/jwt"
	"github.com/quackr/quack_auth_server/internal/pkg/mailqueue"
	"github.com/quackr/quack_auth_server/internal/pkg/oauth"
	"github.com/quackr/quack_auth_server/internal/pkg/oss"
	"github.com/quackr/quack_auth_server/internal/repository"
	"github.com/quackr/quack_auth_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 令牌编解码器（密钥进程内只读，启动时加载一次）
	codec := jwt.NewCodec(&cfg.JWT)

	// 邮件队列与人气榜缓存
	mailQueue := mailqueue.NewQueue(rdb, cfg.Mail.QueueName)
	popularCache := cache.NewPopularCache(rdb)
	stateStore := oauth.NewStateStore(rdb)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, codec, cfg)
	userService := service.NewUserService(userRepo, codec, mailQueue, popularCache, ossClient, cfg)
	quotaService := service.NewQuotaService(userRepo, cfg)

	// 启动定时任务（每日配额重置 + 人气榜缓存清理）
	cronService := cron.NewService(quotaService, popularCache, cfg.Quota.ResetHourUTC)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	reactionHandler := handler.NewReactionHandler(quotaService, userService)
	adminHandler := handler.NewAdminHandler(userService, quotaService)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		reactionHandler,
		adminHandler,
		codec,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
