package dto

// SignUpRequest 注册请求
type SignUpRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Mail      string `json:"mail" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=32"`
	// 注册前必须同意服务条款
	TermsAccepted bool `json:"terms_accepted"`
}

// SignUpResponse 注册响应
type SignUpResponse struct {
	UserID int64 `json:"user_id"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Mail     string `json:"mail" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPairResponse 登录 / 刷新响应（访问令牌 + 刷新令牌）
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserInfo 令牌校验结果（供其他服务做鉴权用）
type UserInfo struct {
	UserID string `json:"user_id"`
	Mail   string `json:"mail"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ForgotPasswordRequest 找回密码请求
type ForgotPasswordRequest struct {
	Mail string `json:"mail" binding:"required,email"`
}

// ResetPasswordRequest 通过重置令牌设置新密码
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// ChangePasswordRequest 登录态下修改密码
type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=32"`
}
