package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"scout-assist/internal/model"
)

// UsageRepository API 用量数据访问接口（只追加）
type UsageRepository interface {
	Create(ctx context.Context, log *model.UsageLog) error
	ListSince(ctx context.Context, since time.Time) ([]model.UsageLog, error)
}

type usageRepo struct {
	db *gorm.DB
}

// NewUsageRepo 创建 UsageRepository 实例
func NewUsageRepo(db *gorm.DB) UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) Create(ctx context.Context, log *model.UsageLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListSince 返回 since 之后的用量记录（零值表示全部）
func (r *usageRepo) ListSince(ctx context.Context, since time.Time) ([]model.UsageLog, error) {
	var list []model.UsageLog
	db := r.db.WithContext(ctx).
		Select("id", "user_id", "model", "input_tokens", "output_tokens", "total_tokens", "total_cost", "created_at")
	if !since.IsZero() {
		db = db.Where("created_at >= ?", since)
	}
	err := db.Order("created_at ASC, id ASC").Find(&list).Error
	return list, err
}
