package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quackr/quack_auth_server/internal/model/dto"
	"github.com/quackr/quack_auth_server/internal/pkg/response"
	"github.com/quackr/quack_auth_server/internal/service"
)

// AdminHandler 管理员操作
type AdminHandler struct {
	userService  *service.UserService
	quotaService *service.QuotaService
}

func NewAdminHandler(userService *service.UserService, quotaService *service.QuotaService) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		quotaService: quotaService,
	}
}

// BlockUser 封禁用户
// POST /api/v1/admin/users/:id/block
func (h *AdminHandler) BlockUser(c *gin.Context) {
	h.changeStatus(c, h.userService.BlockUser)
}

// UnblockUser 解封用户
// POST /api/v1/admin/users/:id/unblock
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	h.changeStatus(c, h.userService.UnblockUser)
}

func (h *AdminHandler) changeStatus(c *gin.Context, op func(int64) error) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户 ID")
		return
	}

	if err := op(userID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidStatusChange):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, nil)
}

// GetUser 查询单个用户
// GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户 ID")
		return
	}

	detail, err := h.userService.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, detail)
}

// GetUsersByIDs 批量查询用户
// POST /api/v1/admin/users/batch
func (h *AdminHandler) GetUsersByIDs(c *gin.Context) {
	var req dto.UsersByIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	details, err := h.userService.GetUsersByIDs(req.UserIDs)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, details)
}

// ResetQuotas 手动触发全量配额重置
// POST /api/v1/admin/quota/reset
func (h *AdminHandler) ResetQuotas(c *gin.Context) {
	if err := h.quotaService.ResetAllQuotas(); err != nil {
		switch {
		case errors.Is(err, service.ErrNoUsers):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "配额已重置", nil)
}
