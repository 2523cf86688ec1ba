package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/quackr/quack_auth_server/internal/api/middleware"
	"github.com/quackr/quack_auth_server/internal/model/dto"
	"github.com/quackr/quack_auth_server/internal/pkg/oauth"
	"github.com/quackr/quack_auth_server/internal/pkg/response"
	"github.com/quackr/quack_auth_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	stateStore  *oauth.StateStore
}

func NewAuthHandler(authService *service.AuthService, stateStore *oauth.StateStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stateStore:  stateStore,
	}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrNotVerified):
			response.NotVerifiedError(c, err.Error())
		case errors.Is(err, service.ErrBlocked):
			response.BlockedError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// Refresh 刷新令牌对，身份取自已校验的 refresh 令牌上下文
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	mail, ok := middleware.GetMail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.authService.RefreshToken(mail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Validate 校验 access 令牌并返回用户身份（供其他服务调用）
// GET /api/v1/auth/validate
func (h *AuthHandler) Validate(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := ""
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenString = authHeader[7:]
	}

	info, err := h.authService.ValidateToken(tokenString)
	if err != nil {
		response.AuthError(c, err.Error())
		return
	}

	response.Success(c, info)
}

// GithubAuth 跳转 GitHub 授权
// GET /api/v1/auth/github
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	state, err := h.stateStore.GenerateState(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	c.Redirect(302, h.authService.GetGithubAuthURL(state))
}

// GithubCallback 处理 GitHub OAuth 回调
// GET /api/v1/auth/github/callback
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	if err := h.stateStore.ValidateState(c.Request.Context(), state); err != nil {
		response.AuthError(c, "state 校验失败")
		return
	}

	resp, err := h.authService.GithubCallback(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlocked):
			response.BlockedError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
