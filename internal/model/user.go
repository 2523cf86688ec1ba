package model

import (
	"time"
)

// Role 用户角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Status 账号生命周期状态
// 合法迁移：REGISTERED -> CONFIRMED -> BLOCKED（管理员可解封回 CONFIRMED）
const (
	StatusRegistered = "REGISTERED"
	StatusConfirmed  = "CONFIRMED"
	StatusBlocked    = "BLOCKED"
)

type User struct {
	ID                  int64     `gorm:"primaryKey" json:"id"`
	Username            string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Mail                string    `gorm:"size:100;uniqueIndex;not null" json:"mail"`
	PasswordHash        *string   `gorm:"size:255" json:"-"`
	FirstName           string    `gorm:"size:50" json:"first_name"`
	LastName            string    `gorm:"size:50" json:"last_name"`
	Role                string    `gorm:"size:20;default:USER" json:"role"`
	Status              string    `gorm:"size:20;default:REGISTERED" json:"status"`
	RemainingQuackCount int       `gorm:"default:500" json:"remaining_quack_count"`
	RemainingHateCount  int       `gorm:"default:500" json:"remaining_hate_count"`
	Popularity          int       `gorm:"default:0" json:"popularity"`
	ImageURL            string    `gorm:"size:500" json:"image_url"`
	GithubID            *string   `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
