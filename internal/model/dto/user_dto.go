package dto

// UserDetail 用户公开信息
type UserDetail struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Mail       string `json:"mail"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	Popularity int    `json:"popularity"`
	ImageURL   string `json:"image_url"`
}

// UpdateProfileRequest 更新用户信息请求
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=50"`
	Username  *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
}

// UsersByIDsRequest 按 ID 批量查询用户
type UsersByIDsRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1"`
}

// QuotaInfo 每日反应配额信息
type QuotaInfo struct {
	DailyLimit     int `json:"daily_limit"`
	RemainingQuack int `json:"remaining_quack"`
	RemainingHate  int `json:"remaining_hate"`
}
