package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quackr/quack_auth_server/internal/api/middleware"
	"github.com/quackr/quack_auth_server/internal/pkg/response"
	"github.com/quackr/quack_auth_server/internal/service"
)

// ReactionHandler 每日反应配额与人气榜
type ReactionHandler struct {
	quotaService *service.QuotaService
	userService  *service.UserService
}

func NewReactionHandler(quotaService *service.QuotaService, userService *service.UserService) *ReactionHandler {
	return &ReactionHandler{
		quotaService: quotaService,
		userService:  userService,
	}
}

// Quack 消耗一次 quack 配额
// POST /api/v1/reactions/quack
func (h *ReactionHandler) Quack(c *gin.Context) {
	h.useQuota(c, service.ReactionQuack)
}

// Hate 消耗一次 hate 配额
// POST /api/v1/reactions/hate
func (h *ReactionHandler) Hate(c *gin.Context) {
	h.useQuota(c, service.ReactionHate)
}

func (h *ReactionHandler) useQuota(c *gin.Context, kind service.ReactionKind) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.quotaService.Use(userID, kind); err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			response.QuotaError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, nil)
}

// GetQuota 查询剩余配额
// GET /api/v1/user/quota
func (h *ReactionHandler) GetQuota(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.quotaService.GetQuotaInfo(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// AddPopularity 给用户人气 +1
// POST /api/v1/users/:id/popularity
func (h *ReactionHandler) AddPopularity(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户 ID")
		return
	}

	if err := h.userService.AddPopularity(targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, nil)
}

// GetPopularUsers 人气榜
// GET /api/v1/users/popular
func (h *ReactionHandler) GetPopularUsers(c *gin.Context) {
	users, err := h.userService.GetPopularUsers(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, users)
}
