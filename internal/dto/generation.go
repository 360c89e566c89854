package dto

import "time"

// ── 生成 DTO ──

// GenerateRequest 生成请求，除 TemplateID 外均为必填
type GenerateRequest struct {
	JobTypeID          uint   `json:"job_type_id"         binding:"required"`
	Industry           string `json:"industry"            binding:"required"`
	CompanyRequirement string `json:"company_requirement" binding:"required"`
	OfferTemplate      string `json:"offer_template"      binding:"required"`
	StudentProfile     string `json:"student_profile"     binding:"required"`
	OutputRuleID       uint   `json:"output_rule_id"      binding:"required"`
	TemplateID         *uint  `json:"template_id"`
}

// GenerateResponse 生成响应
type GenerateResponse struct {
	Comment   string     `json:"comment"`
	HistoryID uint       `json:"history_id,omitempty"`
	Usage     UsageBrief `json:"usage"`
}

// UsageBrief 单次调用用量
type UsageBrief struct {
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	TotalTokens  int64  `json:"total_tokens"`
	TotalCost    string `json:"total_cost"`
}

// HistoryListRequest 生成历史查询参数
type HistoryListRequest struct {
	PaginationRequest
	UserID  *uint      `form:"user_id"`
	Keyword string     `form:"keyword" binding:"omitempty,max=100"`
	From    *time.Time `form:"from"    time_format:"2006-01-02"`
	To      *time.Time `form:"to"      time_format:"2006-01-02"`
}

// HistoryResponse 生成历史条目
type HistoryResponse struct {
	ID                 uint      `json:"id"`
	UserID             uint      `json:"user_id"`
	Username           string    `json:"username"`
	TemplateName       string    `json:"template_name"`
	JobType            string    `json:"job_type"`
	Industry           string    `json:"industry"`
	CompanyRequirement string    `json:"company_requirement"`
	OfferTemplate      string    `json:"offer_template"`
	OutputRuleName     string    `json:"output_rule_name"`
	StudentProfile     string    `json:"student_profile"`
	GeneratedComment   string    `json:"generated_comment"`
	CreatedAt          time.Time `json:"created_at"`
}
