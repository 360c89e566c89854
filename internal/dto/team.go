package dto

import "time"

// ── 团队 DTO ──

// TeamRequest 创建/更新团队请求
type TeamRequest struct {
	Name        string `json:"team_name"   binding:"required,max=100"`
	Description string `json:"description"`
}

// AddTeamMemberRequest 添加成员请求
type AddTeamMemberRequest struct {
	UserID    uint `json:"user_id"    binding:"required"`
	IsManager bool `json:"is_manager"`
}

// UpdateTeamMemberRequest 更新成员管理者标记
type UpdateTeamMemberRequest struct {
	IsManager *bool `json:"is_manager" binding:"required"`
}

// TeamAssignmentRequest 整体替换团队的模板/输出规则分配
type TeamAssignmentRequest struct {
	IDs []uint `json:"ids" binding:"omitempty,dive,min=1"`
}

// TeamResponse 团队列表项
type TeamResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"team_name"`
	Description  string    `json:"description"`
	MemberCount  int64     `json:"member_count"`
	ManagerCount int64     `json:"manager_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// TeamMemberResponse 团队成员
type TeamMemberResponse struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"user_role"`
	IsManager bool      `json:"is_manager"`
	JoinedAt  time.Time `json:"joined_at"`
}

// TeamDetailResponse 团队详情（含成员与分配）
type TeamDetailResponse struct {
	TeamResponse
	Members       []TeamMemberResponse `json:"members"`
	TemplateIDs   []uint               `json:"template_ids"`
	OutputRuleIDs []uint               `json:"output_rule_ids"`
}
