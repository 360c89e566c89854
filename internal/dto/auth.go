package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=72"`
}

// UpdateMeRequest 修改本人信息请求
// 修改密码时必须提供当前密码
type UpdateMeRequest struct {
	Username        *string `json:"username"         binding:"omitempty,min=1,max=64"`
	CurrentPassword string  `json:"current_password" binding:"omitempty,max=72"`
	NewPassword     *string `json:"new_password"     binding:"omitempty,min=8,max=72"`
}

// LoginMeta 登录来源信息（由 handler 从请求中提取）
type LoginMeta struct {
	IPAddress string
	UserAgent string
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // 有效期（秒）
	User      UserResponse `json:"user"`
}

// MeResponse 当前用户信息（GET /auth/me）
type MeResponse struct {
	UserResponse
	Capabilities []string `json:"capabilities"`
	Teams        []IDName `json:"teams"`
}
