package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageLog API 用量记录表，对应 usage_logs（只追加）
type UsageLog struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID       *uint           `gorm:"index"                       json:"user_id,omitempty"`
	Model        string          `gorm:"type:varchar(100)"           json:"model"`
	InputTokens  int64           `gorm:"not null;default:0"          json:"input_tokens"`
	OutputTokens int64           `gorm:"not null;default:0"          json:"output_tokens"`
	TotalTokens  int64           `gorm:"not null;default:0"          json:"total_tokens"`
	TotalCost    decimal.Decimal `gorm:"type:numeric(12,6);not null" json:"total_cost"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (UsageLog) TableName() string { return "usage_logs" }
