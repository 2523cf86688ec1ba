package main

import (
	"errors"
	"log"
	"os"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/database"
	"github.com/quackr/quack_auth_server/internal/pkg/cache"
	"github.com/quackr/quack_auth_server/internal/pkg/cron"
	"github.com/quackr/quack_auth_server/internal/repository"
	"github.com/quackr/quack_auth_server/internal/service"
)

// 手动触发一轮每日重置（配额 + 人气榜缓存），用于外部调度或运维兜底
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	quotaService := service.NewQuotaService(userRepo, cfg)
	popularCache := cache.NewPopularCache(rdb)

	cronService := cron.NewService(quotaService, popularCache, cfg.Quota.ResetHourUTC)
	if err := cronService.RunNow(); err != nil {
		if errors.Is(err, service.ErrNoUsers) {
			// 告警级别，不算失败
			log.Println("Quota reset found no users")
			return
		}
		log.Fatalf("Quota reset failed: %v", err)
	}

	log.Println("Quota reset completed")
}
