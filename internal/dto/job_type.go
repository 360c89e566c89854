package dto

import "time"

// ── 职种定义 DTO ──

// JobTypeRequest 创建/更新职种请求
type JobTypeRequest struct {
	Name       string `json:"name"       binding:"required,max=100"`
	Definition string `json:"definition" binding:"required"`
}

// JobTypeResponse 职种响应
type JobTypeResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Definition string    `json:"definition"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
