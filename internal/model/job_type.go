package model

// JobType 职种适性定义表，对应 job_types
// 列表按创建顺序返回，生成提示词时依赖该顺序
type JobType struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"               json:"id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Definition string `gorm:"type:text;not null"                     json:"definition"`
	AuditedModel
}

// TableName 指定表名
func (JobType) TableName() string { return "job_types" }
