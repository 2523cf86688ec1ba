package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/model"
	"github.com/quackr/quack_auth_server/internal/model/dto"
	"github.com/quackr/quack_auth_server/internal/pkg/jwt"
	"github.com/quackr/quack_auth_server/internal/pkg/oauth"
	"github.com/quackr/quack_auth_server/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrNotVerified        = errors.New("账号尚未验证，请查收验证邮件")
	ErrBlocked            = errors.New("账号已被管理员封禁，请联系我们")
	ErrInvalidToken       = errors.New("令牌无效或已过期")
	ErrUserNotFound       = errors.New("用户不存在")
)

type AuthService struct {
	userRepo    *repository.UserRepository
	codec       *jwt.Codec
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
}

func NewAuthService(userRepo *repository.UserRepository, codec *jwt.Codec, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codec:    codec,
		cfg:      cfg,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
	}
}

// Login 用户登录。凭证错误不区分"用户不存在"和"密码错误"，
// 凭证通过后再按账号状态分流。
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.TokenPairResponse, error) {
	user, err := s.userRepo.GetByMail(req.Mail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case model.StatusConfirmed:
		return s.mintTokenPair(user)
	case model.StatusRegistered:
		return nil, ErrNotVerified
	case model.StatusBlocked:
		return nil, ErrBlocked
	default:
		// 状态机不变量下不可达，防御分支
		return nil, ErrInvalidCredentials
	}
}

// RefreshToken 刷新令牌对。身份来自已校验的 refresh 令牌上下文（mail），
// 角色和状态重新从数据库读取，签发后发生的升级或封禁立即生效。
func (s *AuthService) RefreshToken(mail string) (*dto.TokenPairResponse, error) {
	user, err := s.userRepo.GetByMail(mail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.mintTokenPair(user)
}

// ValidateToken 校验 access 令牌并返回用户身份信息，
// 供其他服务做鉴权使用，不再访问数据库。
func (s *AuthService) ValidateToken(tokenString string) (*dto.UserInfo, error) {
	claims, err := s.codec.ParsePurpose(tokenString, jwt.PurposeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &dto.UserInfo{
		UserID: strconv.FormatInt(claims.UserID, 10),
		Mail:   claims.Subject,
		Role:   claims.Role,
		Status: claims.Status,
	}, nil
}

func (s *AuthService) mintTokenPair(user *model.User) (*dto.TokenPairResponse, error) {
	access, err := s.codec.Generate(user.ID, user.Mail, user.Role, user.Status, jwt.PurposeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Generate(user.ID, user.Mail, user.Role, user.Status, jwt.PurposeRefresh)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// GetGithubAuthURL 获取 GitHub 授权 URL
func (s *AuthService) GetGithubAuthURL(state string) string {
	return s.githubOAuth.GetAuthURL(state)
}

// GithubCallback 处理 GitHub OAuth 回调。
// OAuth 用户首次登录即创建为 CONFIRMED（身份已由 GitHub 背书）。
func (s *AuthService) GithubCallback(ctx context.Context, code string) (*dto.TokenPairResponse, error) {
	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	githubIDStr := fmt.Sprintf("%d", githubUser.ID)

	user, err := s.userRepo.GetByGithubID(githubIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		mail := githubUser.Email
		if mail == "" {
			// GitHub 不一定返回邮箱，mail 列有唯一约束，退化为 noreply 地址
			mail = fmt.Sprintf("%s@users.noreply.github.com", githubUser.Login)
		}
		user = &model.User{
			Username:            githubUser.Login,
			Mail:                mail,
			GithubID:            &githubIDStr,
			ImageURL:            githubUser.AvatarURL,
			Role:                model.RoleUser,
			Status:              model.StatusConfirmed,
			RemainingQuackCount: s.cfg.Quota.DailyLimit,
			RemainingHateCount:  s.cfg.Quota.DailyLimit,
		}

		// 确保用户名唯一
		exists, _ := s.userRepo.ExistsByUsername(user.Username)
		if exists {
			user.Username = fmt.Sprintf("%s_%d", githubUser.Login, githubUser.ID)
		}

		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	if user.Status == model.StatusBlocked {
		return nil, ErrBlocked
	}

	return s.mintTokenPair(user)
}
