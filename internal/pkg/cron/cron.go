package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/quackr/quack_auth_server/internal/pkg/cache"
	"github.com/quackr/quack_auth_server/internal/service"
)

// Service 每日定时任务：配额重置 + 人气榜缓存清理。
// 触发时刻是部署配置，任务本身幂等，可手动重放。
type Service struct {
	quotaService *service.QuotaService
	popularCache *cache.PopularCache
	resetHourUTC int
	stopChan     chan struct{}
}

func NewService(quotaService *service.QuotaService, popularCache *cache.PopularCache, resetHourUTC int) *Service {
	return &Service{
		quotaService: quotaService,
		popularCache: popularCache,
		resetHourUTC: resetHourUTC,
		stopChan:     make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyReset()
	log.Println("Cron service started (quota reset + popular cache clear)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyReset 每日定时执行重置
func (s *Service) runDailyReset() {
	timer := time.NewTimer(s.untilNextRun(time.Now().UTC()))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.runJobs()
			timer.Reset(24 * time.Hour)
		}
	}
}

// untilNextRun 距离下一个触发时刻（UTC 配置小时）的时长
func (s *Service) untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.resetHourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

func (s *Service) runJobs() {
	log.Println("Starting daily quota reset...")
	if err := s.quotaService.ResetAllQuotas(); err != nil {
		if errors.Is(err, service.ErrNoUsers) {
			// 运维告警：重置时用户表为空，任务照常继续
			log.Println("Daily quota reset found no users")
		} else {
			log.Printf("Failed to reset daily quotas: %v", err)
		}
	} else {
		log.Println("Daily quota reset completed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.popularCache.Clear(ctx); err != nil {
		log.Printf("Failed to clear popular cache: %v", err)
	} else {
		log.Println("Popular cache cleared")
	}
}

// RunNow 立即执行一轮重置（用于测试或手动触发）
func (s *Service) RunNow() error {
	log.Println("Manual quota reset triggered...")
	err := s.quotaService.ResetAllQuotas()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cacheErr := s.popularCache.Clear(ctx); cacheErr != nil {
		log.Printf("Failed to clear popular cache: %v", cacheErr)
	}

	return err
}
