package model

import (
	"time"

	"gorm.io/datatypes"
)

// LoginLog 登录日志表，对应 login_logs（只记录成功登录）
type LoginLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	UserID    uint      `gorm:"not null;index"                json:"user_id"`
	Username  string    `gorm:"type:varchar(64);not null"     json:"username"`
	IPAddress string    `gorm:"type:varchar(64)"              json:"ip_address"`
	UserAgent string    `gorm:"type:text"                     json:"user_agent"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"login_at"`
}

// TableName 指定表名
func (LoginLog) TableName() string { return "login_logs" }

// ActivityLog 操作日志表，对应 activity_logs
// Detail 保存触发请求的快照（path / method / body），仅供人工审查
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"      json:"id"`
	UserID    uint           `gorm:"not null;index"                json:"user_id"`
	Username  string         `gorm:"type:varchar(64);not null"     json:"username"`
	Action    string         `gorm:"type:varchar(100);not null"    json:"action"`
	Detail    datatypes.JSON `json:"detail"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (ActivityLog) TableName() string { return "activity_logs" }
