package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/database"
	"github.com/quackr/quack_auth_server/internal/pkg/email"
	"github.com/quackr/quack_auth_server/internal/pkg/mailqueue"
)

const popTimeout = 5 * time.Second

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	queue := mailqueue.NewQueue(rdb, cfg.Mail.QueueName)
	sender := email.NewService(&cfg.Email)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Println("Mailer started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Mailer stopped")
			return
		default:
		}

		msg, err := queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("Failed to pop mail: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue // 超时，无邮件
		}

		// 单封邮件发送失败只记日志，不阻塞队列
		if err := sender.Send(msg.To, msg.Subject, msg.Body); err != nil {
			log.Printf("Failed to send mail to %v: %v", msg.To, err)
			continue
		}
		log.Printf("Mail sent to %v: %s", msg.To, msg.Subject)
	}
}
