package dto

import (
	"encoding/json"
	"time"
)

// ── 审计日志 DTO ──

// LogListRequest 登录/操作日志查询参数
type LogListRequest struct {
	PaginationRequest
	UserID *uint  `form:"user_id"`
	Action string `form:"action" binding:"omitempty,max=100"`
}

// LoginLogResponse 登录日志
type LoginLogResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	LoginAt   time.Time `json:"login_at"`
}

// ActivityLogResponse 操作日志
type ActivityLogResponse struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	Username  string          `json:"username"`
	Action    string          `json:"action"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ── 用量统计 DTO ──

// UsageStatsRequest 用量统计查询参数
type UsageStatsRequest struct {
	Since *time.Time `form:"since" time_format:"2006-01-02"`
}

// UsageStatsResponse 用量统计
type UsageStatsResponse struct {
	TotalRequests int64          `json:"total_requests"`
	TotalTokens   int64          `json:"total_tokens"`
	InputTokens   int64          `json:"input_tokens"`
	OutputTokens  int64          `json:"output_tokens"`
	TotalCost     string         `json:"total_cost"`
	Monthly       []UsageBucket  `json:"monthly"`
	ByUser        []UserUsageRow `json:"by_user"`
}

// UsageBucket 月度汇总（YYYY-MM）
type UsageBucket struct {
	Month       string `json:"month"`
	Requests    int64  `json:"requests"`
	TotalTokens int64  `json:"total_tokens"`
	TotalCost   string `json:"total_cost"`
}

// UserUsageRow 按用户汇总
type UserUsageRow struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	Requests    int64  `json:"requests"`
	TotalTokens int64  `json:"total_tokens"`
	TotalCost   string `json:"total_cost"`
}
