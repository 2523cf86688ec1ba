package api

import (
	"github.com/gin-gonic/gin"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/api/handler"
	"github.com/quackr/quack_auth_server/internal/api/middleware"
	"github.com/quackr/quack_auth_server/internal/pkg/jwt"
)

type Router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	reactionHandler *handler.ReactionHandler
	adminHandler    *handler.AdminHandler
	codec           *jwt.Codec
	cfg             *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	reactionHandler *handler.ReactionHandler,
	adminHandler *handler.AdminHandler,
	codec *jwt.Codec,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:     authHandler,
		userHandler:     userHandler,
		reactionHandler: reactionHandler,
		adminHandler:    adminHandler,
		codec:           codec,
		cfg:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.userHandler.SignUp)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/verify", r.userHandler.VerifyAccount)
			auth.POST("/forgot-password", r.userHandler.ForgotPassword)
			auth.POST("/reset-password", r.userHandler.ResetPassword)
			auth.GET("/validate", r.authHandler.Validate)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 刷新令牌走 refresh 专用中间件
		api.POST("/auth/refresh", middleware.RefreshAuth(r.codec), r.authHandler.Refresh)

		// 公开接口 - 人气榜
		api.GET("/users/popular", r.reactionHandler.GetPopularUsers)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.codec))
		{
			authenticated.POST("/auth/change-password", r.userHandler.ChangePassword)

			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
				user.GET("/quota", r.reactionHandler.GetQuota)
			}

			reactions := authenticated.Group("/reactions")
			{
				reactions.POST("/quack", r.reactionHandler.Quack)
				reactions.POST("/hate", r.reactionHandler.Hate)
			}

			authenticated.POST("/users/:id/popularity", r.reactionHandler.AddPopularity)

			// 管理员接口
			admin := authenticated.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/users/:id/block", r.adminHandler.BlockUser)
				admin.POST("/users/:id/unblock", r.adminHandler.UnblockUser)
				admin.GET("/users/:id", r.adminHandler.GetUser)
				admin.POST("/users/batch", r.adminHandler.GetUsersByIDs)
				admin.POST("/quota/reset", r.adminHandler.ResetQuotas)
			}
		}
	}

	return engine
}
