package model

// OutputRule 输出规则表，对应 output_rules
type OutputRule struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string `gorm:"type:varchar(100);not null"     json:"name"`
	RuleText    string `gorm:"type:text;not null"             json:"rule_text"`
	Description string `gorm:"type:text"                      json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"          json:"is_active"`
	AuditedModel
}

// TableName 指定表名
func (OutputRule) TableName() string { return "output_rules" }
