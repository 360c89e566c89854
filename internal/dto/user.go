package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=user manager admin"`
	Status  string `form:"status"  binding:"omitempty,oneof=active inactive"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string `json:"username"    binding:"required,min=1,max=64"`
	Password string `json:"password"    binding:"required,min=8,max=72"`
	Role     string `json:"user_role"   binding:"omitempty,oneof=user manager admin"`
	Status   string `json:"user_status" binding:"omitempty,oneof=active inactive"`
}

// UpdateUserRequest 更新用户请求（管理员）
type UpdateUserRequest struct {
	Username *string `json:"username"    binding:"omitempty,min=1,max=64"`
	Password *string `json:"password"    binding:"omitempty,min=8,max=72"`
	Role     *string `json:"user_role"   binding:"omitempty,oneof=user manager admin"`
	Status   *string `json:"user_status" binding:"omitempty,oneof=active inactive"`
}
