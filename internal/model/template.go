package model

import "time"

// Template 模板表，对应 templates
// JobTypeID / OutputRuleID 为引用，生成时必须能解析到现存记录
type Template struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement"               json:"id"`
	Name               string `gorm:"type:varchar(200);not null;uniqueIndex" json:"template_name"`
	JobTypeID          uint   `gorm:"not null;index"                         json:"job_type_id"`
	Industry           string `gorm:"type:varchar(200);not null"             json:"industry"`
	CompanyRequirement string `gorm:"type:text;not null"                     json:"company_requirement"`
	OfferTemplate      string `gorm:"type:text;not null"                     json:"offer_template"`
	OutputRuleID       *uint  `gorm:"index"                                  json:"output_rule_id"`
	AuditedModel

	// 关联
	JobType    *JobType    `gorm:"foreignKey:JobTypeID"    json:"job_type,omitempty"`
	OutputRule *OutputRule `gorm:"foreignKey:OutputRuleID" json:"output_rule,omitempty"`
}

// TableName 指定表名
func (Template) TableName() string { return "templates" }

// TemplateAssignment 模板-用户分配表，对应 template_assignments
type TemplateAssignment struct {
	TemplateID uint      `gorm:"primaryKey;autoIncrement:false" json:"template_id"`
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"        json:"created_at"`
}

// TableName 指定表名
func (TemplateAssignment) TableName() string { return "template_assignments" }
