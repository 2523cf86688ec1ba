package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/model/dto"
	"github.com/quackr/quack_auth_server/internal/repository"
)

var (
	ErrQuotaExceeded = errors.New("今日配额已用完")
	ErrNoUsers       = errors.New("数据库中没有任何用户")
)

// ReactionKind 反应类型，对应两个独立的每日计数
type ReactionKind string

const (
	ReactionQuack ReactionKind = "quack"
	ReactionHate  ReactionKind = "hate"
)

type QuotaService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewQuotaService(userRepo *repository.UserRepository, cfg *config.Config) *QuotaService {
	return &QuotaService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Use 扣减一次配额。计数为 0 时拒绝而不是钳位，
// 扣减是单条条件更新，并发下不会超扣。
func (s *QuotaService) Use(userID int64, kind ReactionKind) error {
	var (
		ok  bool
		err error
	)
	switch kind {
	case ReactionHate:
		ok, err = s.userRepo.DecrementHateIfPositive(userID)
	default:
		ok, err = s.userRepo.DecrementQuackIfPositive(userID)
	}
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// 没有行被更新：要么用户不存在，要么配额耗尽
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return ErrQuotaExceeded
}

// GetQuotaInfo 读取当前剩余配额，只读不扣减
func (s *QuotaService) GetQuotaInfo(userID int64) (*dto.QuotaInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &dto.QuotaInfo{
		DailyLimit:     s.cfg.Quota.DailyLimit,
		RemainingQuack: user.RemainingQuackCount,
		RemainingHate:  user.RemainingHateCount,
	}, nil
}

// ResetAllQuotas 把所有用户的两个计数重置为配置上限。
// 用户表为空视为运维异常，返回 ErrNoUsers 由调用方告警。
func (s *QuotaService) ResetAllQuotas() error {
	affected, err := s.userRepo.ResetAllQuotas(s.cfg.Quota.DailyLimit)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoUsers
	}
	return nil
}
