package testutil

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quackr/quack_auth_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	nano := time.Now().UnixNano()
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:            fmt.Sprintf("testuser_%d", nano%1000000),
		Mail:                fmt.Sprintf("test_%d@example.com", nano),
		PasswordHash:        &passwordHash,
		FirstName:           "Test",
		LastName:            "User",
		Role:                model.RoleUser,
		Status:              model.StatusConfirmed,
		RemainingQuackCount: 500,
		RemainingHateCount:  500,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithMail 设置邮箱
func WithMail(mail string) func(*model.User) {
	return func(u *model.User) {
		u.Mail = mail
	}
}

// WithPassword 用真实 bcrypt 哈希设置密码，供登录类测试使用
func WithPassword(t *testing.T, password string) func(*model.User) {
	return func(u *model.User) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("Failed to hash test password: %v", err)
		}
		s := string(hash)
		u.PasswordHash = &s
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithStatus 设置账号状态
func WithStatus(status string) func(*model.User) {
	return func(u *model.User) {
		u.Status = status
	}
}

// WithQuota 设置两个剩余计数
func WithQuota(quack, hate int) func(*model.User) {
	return func(u *model.User) {
		u.RemainingQuackCount = quack
		u.RemainingHateCount = hate
	}
}

// WithPopularity 设置人气值
func WithPopularity(popularity int) func(*model.User) {
	return func(u *model.User) {
		u.Popularity = popularity
	}
}

// WithGithubID 设置 GitHub 绑定
func WithGithubID(githubID string) func(*model.User) {
	return func(u *model.User) {
		u.GithubID = &githubID
	}
}
