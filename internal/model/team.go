package model

import "time"

// Team 团队表，对应 teams
type Team struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"               json:"id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex" json:"team_name"`
	Description string `gorm:"type:text"                              json:"description,omitempty"`
	AuditedModel
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// TeamMember 团队成员表，对应 team_members
// IsManager 为 true 的成员可查看本团队成员的用户、日志与生成历史
type TeamMember struct {
	TeamID    uint      `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	IsManager bool      `gorm:"not null;default:false"         json:"is_manager"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"        json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TeamMember) TableName() string { return "team_members" }

// TeamTemplate 团队-模板分配表，对应 team_templates
type TeamTemplate struct {
	TeamID     uint `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	TemplateID uint `gorm:"primaryKey;autoIncrement:false" json:"template_id"`
}

// TableName 指定表名
func (TeamTemplate) TableName() string { return "team_templates" }

// TeamOutputRule 团队-输出规则分配表，对应 team_output_rules
type TeamOutputRule struct {
	TeamID       uint `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	OutputRuleID uint `gorm:"primaryKey;autoIncrement:false" json:"output_rule_id"`
}

// TableName 指定表名
func (TeamOutputRule) TableName() string { return "team_output_rules" }

// TeamSummary 团队列表行（含成员数统计）
type TeamSummary struct {
	Team
	MemberCount  int64 `json:"member_count"`
	ManagerCount int64 `json:"manager_count"`
}
