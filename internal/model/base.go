package model

import "time"

// BaseModel 通用时间戳字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// AuditedModel 记录创建人/更新人的审计字段
type AuditedModel struct {
	BaseModel
	CreatedBy *uint `gorm:"index" json:"created_by,omitempty"`
	UpdatedBy *uint `json:"updated_by,omitempty"`
}

// Touch 设置创建人与更新人
func (m *AuditedModel) Touch(userID uint) {
	if m.CreatedBy == nil {
		m.CreatedBy = &userID
	}
	m.UpdatedBy = &userID
}
