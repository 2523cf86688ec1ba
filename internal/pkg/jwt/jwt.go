package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quackr/quack_auth_server/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrWrongPurpose = errors.New("unexpected token purpose")
)

// Purpose 令牌用途。所有令牌共用一个密钥和编解码器，
// 通过 purpose 声明区分权限范围，使用方必须先校验 purpose。
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
	PurposeVerify  = "verify"
	PurposeReset   = "reset"
)

// Claims 强类型声明集。access/refresh 令牌携带完整身份声明，
// verify/reset 令牌只携带邮箱（subject）和 purpose。
type Claims struct {
	UserID  int64  `json:"user_id,omitempty"`
	Role    string `json:"role,omitempty"`
	Status  string `json:"status,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Codec 负责令牌的签发与解析，过期时间按 purpose 取配置
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

func NewCodec(cfg *config.JWTConfig) *Codec {
	return &Codec{
		secret:     []byte(cfg.Secret),
		accessTTL:  time.Duration(cfg.AccessExpireMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshExpireHours) * time.Hour,
		verifyTTL:  time.Duration(cfg.VerifyExpireMinutes) * time.Minute,
		resetTTL:   time.Duration(cfg.ResetExpireMinutes) * time.Minute,
		now:        time.Now,
	}
}

// WithClock 注入时钟，测试用
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) ttl(purpose string) time.Duration {
	switch purpose {
	case PurposeAccess:
		return c.accessTTL
	case PurposeRefresh:
		return c.refreshTTL
	case PurposeVerify:
		return c.verifyTTL
	default:
		return c.resetTTL
	}
}

// Generate 签发身份令牌（access 或 refresh），subject 为邮箱
func (c *Codec) Generate(userID int64, mail, role, status, purpose string) (string, error) {
	now := c.now()
	claims := &Claims{
		UserID:  userID,
		Role:    role,
		Status:  status,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   mail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(purpose))),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
}

// GenerateEmailToken 签发只含邮箱的令牌，用于验证账号 / 重置密码链接
func (c *Codec) GenerateEmailToken(mail, purpose string) (string, error) {
	now := c.now()
	claims := &Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   mail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(purpose))),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
}

// Parse 解析并校验令牌。签名错误或结构非法返回 ErrInvalidToken，
// 签名合法但已过期返回 ErrTokenExpired。
// 必需声明在解析阶段就校验，缺失视为非法令牌。
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParsePurpose 解析令牌并要求 purpose 匹配
func (c *Codec) ParsePurpose(tokenString, purpose string) (*Claims, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// IsValid 令牌是否可用。缺失、非法、签名错误、已过期统一返回 false，
// 过期是正常的否定结果，不是错误。
func (c *Codec) IsValid(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	_, err := c.Parse(tokenString)
	return err == nil
}

// Subject 提取令牌 subject（邮箱），解析失败与 Parse 行为一致
func (c *Codec) Subject(tokenString string) (string, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func validateClaims(claims *Claims) error {
	if claims.Purpose == "" || claims.Subject == "" {
		return ErrInvalidToken
	}
	switch claims.Purpose {
	case PurposeAccess, PurposeRefresh:
		if claims.UserID == 0 || claims.Role == "" || claims.Status == "" {
			return ErrInvalidToken
		}
	case PurposeVerify, PurposeReset:
		// 邮箱令牌只需要 subject
	default:
		return ErrInvalidToken
	}
	return nil
}
