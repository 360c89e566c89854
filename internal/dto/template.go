package dto

import "time"

// ── 模板 DTO ──

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Name               string `json:"template_name"       binding:"required,max=200"`
	JobTypeID          uint   `json:"job_type_id"         binding:"required"`
	Industry           string `json:"industry"            binding:"required,max=200"`
	CompanyRequirement string `json:"company_requirement" binding:"required"`
	OfferTemplate      string `json:"offer_template"      binding:"required"`
	OutputRuleID       *uint  `json:"output_rule_id"`
}

// UpdateTemplateRequest 更新模板请求
type UpdateTemplateRequest struct {
	Name               *string `json:"template_name"       binding:"omitempty,min=1,max=200"`
	JobTypeID          *uint   `json:"job_type_id"         binding:"omitempty,min=1"`
	Industry           *string `json:"industry"            binding:"omitempty,min=1,max=200"`
	CompanyRequirement *string `json:"company_requirement" binding:"omitempty,min=1"`
	OfferTemplate      *string `json:"offer_template"      binding:"omitempty,min=1"`
	OutputRuleID       *uint   `json:"output_rule_id"`
	ClearOutputRule    bool    `json:"clear_output_rule"`
}

// DuplicateTemplateRequest 复制模板请求，未指定名称时自动追加时间戳后缀
type DuplicateTemplateRequest struct {
	Name string `json:"template_name" binding:"omitempty,max=200"`
}

// AssignUsersRequest 整体替换模板分配用户
type AssignUsersRequest struct {
	UserIDs []uint `json:"user_ids" binding:"omitempty,dive,min=1"`
}

// TemplateResponse 模板响应
type TemplateResponse struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"template_name"`
	JobTypeID          uint      `json:"job_type_id"`
	JobTypeName        string    `json:"job_type"`
	Industry           string    `json:"industry"`
	CompanyRequirement string    `json:"company_requirement"`
	OfferTemplate      string    `json:"offer_template"`
	OutputRuleID       *uint     `json:"output_rule_id"`
	OutputRuleName     string    `json:"output_rule_name,omitempty"`
	CreatedBy          *uint     `json:"created_by,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
