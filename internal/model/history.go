package model

import "time"

// GenerationHistory 生成历史表，对应 generation_history
// 职种、模板名、用户名均为快照副本而非外键，源记录修改或删除后历史仍可展示
type GenerationHistory struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID             uint      `gorm:"not null;index"             json:"user_id"`
	Username           string    `gorm:"type:varchar(64);not null"  json:"username"`
	TemplateName       string    `gorm:"type:varchar(200)"          json:"template_name"`
	JobType            string    `gorm:"type:varchar(100);not null" json:"job_type"`
	Industry           string    `gorm:"type:varchar(200);not null" json:"industry"`
	CompanyRequirement string    `gorm:"type:text"                  json:"company_requirement"`
	OfferTemplate      string    `gorm:"type:text"                  json:"offer_template"`
	OutputRuleName     string    `gorm:"type:varchar(100)"          json:"output_rule_name"`
	StudentProfile     string    `gorm:"type:text;not null"         json:"student_profile"`
	GeneratedComment   string    `gorm:"type:text;not null"         json:"generated_comment"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (GenerationHistory) TableName() string { return "generation_history" }
