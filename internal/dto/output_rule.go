package dto

import "time"

// ── 输出规则 DTO ──

// CreateOutputRuleRequest 创建输出规则请求
type CreateOutputRuleRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	RuleText    string `json:"rule_text"   binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateOutputRuleRequest 更新输出规则请求
type UpdateOutputRuleRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	RuleText    *string `json:"rule_text"   binding:"omitempty,min=1"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// OutputRuleResponse 输出规则响应
type OutputRuleResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	RuleText    string    `json:"rule_text"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
