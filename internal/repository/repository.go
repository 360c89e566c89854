package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	JobType    JobTypeRepository
	OutputRule OutputRuleRepository
	Template   TemplateRepository
	Team       TeamRepository
	History    HistoryRepository
	Usage      UsageRepository
	Audit      AuditRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		JobType:    NewJobTypeRepo(db),
		OutputRule: NewOutputRuleRepo(db),
		Template:   NewTemplateRepo(db),
		Team:       NewTeamRepo(db),
		History:    NewHistoryRepo(db),
		Usage:      NewUsageRepo(db),
		Audit:      NewAuditRepo(db),
	}
}
