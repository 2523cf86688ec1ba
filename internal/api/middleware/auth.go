package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quackr/quack_auth_server/internal/model"
	"github.com/quackr/quack_auth_server/internal/pkg/jwt"
	"github.com/quackr/quack_auth_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
	MailKey   = "mail"
	RoleKey   = "role"
	StatusKey = "status"
)

// Auth 认证中间件。只接受 purpose 为 access 的令牌，
// verify/reset/refresh 令牌不能冒充访问令牌。
func Auth(codec *jwt.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearer(c)
		if !ok {
			c.Abort()
			return
		}

		claims, err := codec.ParsePurpose(tokenString, jwt.PurposeAccess)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(MailKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Set(StatusKey, claims.Status)
		c.Next()
	}
}

// RefreshAuth 刷新令牌中间件，只接受 purpose 为 refresh 的令牌
func RefreshAuth(codec *jwt.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearer(c)
		if !ok {
			c.Abort()
			return
		}

		claims, err := codec.ParsePurpose(tokenString, jwt.PurposeRefresh)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(MailKey, claims.Subject)
		c.Next()
	}
}

// RequireAdmin 管理员权限检查，必须在 Auth 之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists || role != model.RoleAdmin {
			response.PermissionError(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.AuthError(c, "请提供认证信息")
		return "", false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		response.AuthError(c, "认证格式错误")
		return "", false
	}

	return tokenString, true
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetMail 从上下文获取用户邮箱
func GetMail(c *gin.Context) (string, bool) {
	mail, exists := c.Get(MailKey)
	if !exists {
		return "", false
	}
	m, ok := mail.(string)
	return m, ok
}
