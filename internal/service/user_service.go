package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/model"
	"github.com/quackr/quack_auth_server/internal/model/dto"
	"github.com/quackr/quack_auth_server/internal/pkg/cache"
	"github.com/quackr/quack_auth_server/internal/pkg/email"
	"github.com/quackr/quack_auth_server/internal/pkg/jwt"
	"github.com/quackr/quack_auth_server/internal/pkg/mailqueue"
	"github.com/quackr/quack_auth_server/internal/pkg/oss"
	"github.com/quackr/quack_auth_server/internal/repository"
)

var (
	ErrMailExists          = errors.New("该邮箱已被注册")
	ErrTermsNotAccepted    = errors.New("注册前请先同意服务条款")
	ErrSamePassword        = errors.New("新密码不能与旧密码相同")
	ErrInvalidStatusChange = errors.New("当前账号状态不允许该操作")
	ErrStorageUnavailable  = errors.New("存储服务不可用")
)

type UserService struct {
	userRepo     *repository.UserRepository
	codec        *jwt.Codec
	mailQueue    *mailqueue.Queue
	popularCache *cache.PopularCache
	ossClient    *oss.Client
	cfg          *config.Config
}

func NewUserService(
	userRepo *repository.UserRepository,
	codec *jwt.Codec,
	mailQueue *mailqueue.Queue,
	popularCache *cache.PopularCache,
	ossClient *oss.Client,
	cfg *config.Config,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		codec:        codec,
		mailQueue:    mailQueue,
		popularCache: popularCache,
		ossClient:    ossClient,
		cfg:          cfg,
	}
}

// SignUp 用户注册。新账号为 REGISTERED 状态，
// 验证链接（带 verify 令牌）投递到邮件队列，不等待发送结果。
func (s *UserService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SignUpResponse, error) {
	if !req.TermsAccepted {
		return nil, ErrTermsNotAccepted
	}

	exists, err := s.userRepo.ExistsByMail(req.Mail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrMailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordStr := string(hashedPassword)

	user := &model.User{
		Username:            req.Mail,
		Mail:                req.Mail,
		PasswordHash:        &passwordStr,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Role:                model.RoleUser,
		Status:              model.StatusRegistered,
		RemainingQuackCount: s.cfg.Quota.DailyLimit,
		RemainingHateCount:  s.cfg.Quota.DailyLimit,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := s.codec.GenerateEmailToken(req.Mail, jwt.PurposeVerify)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s?token=%s", s.cfg.Links.VerifyAccountURL, token)
	s.enqueueMail(ctx, req.Mail, "账号验证", email.BuildVerifyAccountBody(link))

	return &dto.SignUpResponse{UserID: user.ID}, nil
}

// VerifyAccount 通过 verify 令牌把账号从 REGISTERED 迁移到 CONFIRMED。
// 重复验证幂等，已封禁账号不允许通过验证解封。
func (s *UserService) VerifyAccount(token string) error {
	claims, err := s.codec.ParsePurpose(token, jwt.PurposeVerify)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.userRepo.GetByMail(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	switch user.Status {
	case model.StatusConfirmed:
		return nil
	case model.StatusBlocked:
		return ErrInvalidStatusChange
	}

	user.Status = model.StatusConfirmed
	return s.userRepo.Update(user)
}

// SendResetPasswordLink 发送密码重置邮件（带 reset 令牌）
func (s *UserService) SendResetPasswordLink(ctx context.Context, mail string) error {
	if _, err := s.userRepo.GetByMail(mail); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.codec.GenerateEmailToken(mail, jwt.PurposeReset)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s?token=%s", s.cfg.Links.ResetPasswordURL, token)
	s.enqueueMail(ctx, mail, "密码重置", email.BuildResetPasswordBody(link))

	return nil
}

// ResetPassword 通过 reset 令牌设置新密码
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := s.codec.ParsePurpose(token, jwt.PurposeReset)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.userRepo.GetByMail(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.setPassword(user, password); err != nil {
		return err
	}

	s.enqueueMail(ctx, user.Mail, "密码修改成功", email.BuildPasswordChangedBody())
	return nil
}

// ChangePassword 登录态下修改密码，新旧密码相同时拒绝
func (s *UserService) ChangePassword(ctx context.Context, userID int64, password string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.PasswordHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) == nil {
			return ErrSamePassword
		}
	}

	if err := s.setPassword(user, password); err != nil {
		return err
	}

	s.enqueueMail(ctx, user.Mail, "密码修改成功", email.BuildPasswordChangedBody())
	return nil
}

func (s *UserService) setPassword(user *model.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	passwordStr := string(hashed)
	user.PasswordHash = &passwordStr
	return s.userRepo.Update(user)
}

// GetUserByID 查询单个用户
func (s *UserService) GetUserByID(id int64) (*dto.UserDetail, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return buildUserDetail(user), nil
}

// GetUsersByIDs 批量查询用户，缺失的 ID 直接跳过
func (s *UserService) GetUsersByIDs(ids []int64) ([]dto.UserDetail, error) {
	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	details := make([]dto.UserDetail, 0, len(users))
	for i := range users {
		details = append(details, *buildUserDetail(&users[i]))
	}
	return details, nil
}

// UpdateProfile 更新展示信息
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserDetail, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.New("用户名已被使用")
		}
		user.Username = *req.Username
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return buildUserDetail(user), nil
}

// UploadAvatar 上传头像到 OSS 并更新用户记录
func (s *UserService) UploadAvatar(userID int64, data []byte, ext string) (string, error) {
	if s.ossClient == nil {
		return "", ErrStorageUnavailable
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	url, err := s.ossClient.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	user.ImageURL = url
	if err := s.userRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

// AddPopularity 人气 +1。不触碰人气榜缓存，
// 榜单只在每日定时清理后的下一次读取时刷新。
func (s *UserService) AddPopularity(userID int64) error {
	ok, err := s.userRepo.IncrementPopularity(userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// GetPopularUsers 人气榜（前 N 名），读穿透缓存。
// 缓存故障降级为直查数据库，只记日志不报错。
func (s *UserService) GetPopularUsers(ctx context.Context) ([]dto.UserDetail, error) {
	if cached, err := s.popularCache.Get(ctx); err != nil {
		log.Printf("Popular cache get failed: %v", err)
	} else if cached != nil {
		return cached, nil
	}

	users, err := s.userRepo.TopNByPopularity(s.cfg.Quota.PopularTopN)
	if err != nil {
		return nil, err
	}

	details := make([]dto.UserDetail, 0, len(users))
	for i := range users {
		details = append(details, *buildUserDetail(&users[i]))
	}

	if err := s.popularCache.Set(ctx, details); err != nil {
		log.Printf("Popular cache set failed: %v", err)
	}

	return details, nil
}

// BlockUser 管理员封禁，仅允许 CONFIRMED -> BLOCKED
func (s *UserService) BlockUser(userID int64) error {
	return s.changeStatus(userID, model.StatusConfirmed, model.StatusBlocked)
}

// UnblockUser 管理员解封，仅允许 BLOCKED -> CONFIRMED
func (s *UserService) UnblockUser(userID int64) error {
	return s.changeStatus(userID, model.StatusBlocked, model.StatusConfirmed)
}

func (s *UserService) changeStatus(userID int64, from, to string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Status != from {
		return ErrInvalidStatusChange
	}

	user.Status = to
	return s.userRepo.Update(user)
}

func (s *UserService) enqueueMail(ctx context.Context, to, subject, body string) {
	if s.mailQueue == nil {
		return
	}
	msg := &mailqueue.Message{
		To:      []string{to},
		Subject: subject,
		Body:    body,
	}
	// 邮件发送是 fire-and-forget，入队失败不影响业务操作
	if err := s.mailQueue.Push(ctx, msg); err != nil {
		log.Printf("Failed to enqueue mail to %s: %v", to, err)
	}
}

func buildUserDetail(user *model.User) *dto.UserDetail {
	return &dto.UserDetail{
		ID:         user.ID,
		Username:   user.Username,
		Mail:       user.Mail,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		Status:     user.Status,
		Popularity: user.Popularity,
		ImageURL:   user.ImageURL,
	}
}
