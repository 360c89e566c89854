package repository

import (
	"context"

	"gorm.io/gorm"

	"scout-assist/internal/model"
)

// LogFilter 审计日志筛选条件
type LogFilter struct {
	Scope  UserScope
	UserID *uint
	Action string
}

// AuditRepository 登录/操作日志数据访问接口（只追加）
type AuditRepository interface {
	CreateLoginLog(ctx context.Context, log *model.LoginLog) error
	CreateActivityLog(ctx context.Context, log *model.ActivityLog) error
	ListLoginLogs(ctx context.Context, filter LogFilter, offset, limit int) ([]model.LoginLog, int64, error)
	ListActivityLogs(ctx context.Context, filter LogFilter, offset, limit int) ([]model.ActivityLog, int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) CreateLoginLog(ctx context.Context, log *model.LoginLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditRepo) CreateActivityLog(ctx context.Context, log *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditRepo) ListLoginLogs(ctx context.Context, filter LogFilter, offset, limit int) ([]model.LoginLog, int64, error) {
	var list []model.LoginLog
	var total int64
	offset, limit = normalizePage(offset, limit)

	db := r.db.WithContext(ctx).Model(&model.LoginLog{})
	db = applyScope(db, "user_id", filter.Scope)
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *auditRepo) ListActivityLogs(ctx context.Context, filter LogFilter, offset, limit int) ([]model.ActivityLog, int64, error) {
	var list []model.ActivityLog
	var total int64
	offset, limit = normalizePage(offset, limit)

	db := r.db.WithContext(ctx).Model(&model.ActivityLog{})
	db = applyScope(db, "user_id", filter.Scope)
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
