package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"scout-assist/internal/model"
)

// HistoryFilter 生成历史筛选条件
type HistoryFilter struct {
	Scope   UserScope
	UserID  *uint
	Keyword string
	From    *time.Time
	To      *time.Time
}

// HistoryRepository 生成历史数据访问接口
type HistoryRepository interface {
	Create(ctx context.Context, h *model.GenerationHistory) error
	GetByID(ctx context.Context, id uint) (*model.GenerationHistory, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter HistoryFilter, offset, limit int) ([]model.GenerationHistory, int64, error)
	Each(ctx context.Context, filter HistoryFilter, batchSize int, fn func([]model.GenerationHistory) error) error
}

type historyRepo struct {
	db *gorm.DB
}

// NewHistoryRepo 创建 HistoryRepository 实例
func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, h *model.GenerationHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historyRepo) GetByID(ctx context.Context, id uint) (*model.GenerationHistory, error) {
	var h model.GenerationHistory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *historyRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.GenerationHistory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context, filter HistoryFilter, offset, limit int) ([]model.GenerationHistory, int64, error) {
	var list []model.GenerationHistory
	var total int64
	offset, limit = normalizePage(offset, limit)

	db := r.filtered(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Each 按批次遍历（导出使用），保持创建时间倒序
func (r *historyRepo) Each(ctx context.Context, filter HistoryFilter, batchSize int, fn func([]model.GenerationHistory) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	for offset := 0; ; offset += batchSize {
		var batch []model.GenerationHistory
		err := r.filtered(ctx, filter).
			Order("created_at DESC, id DESC").
			Offset(offset).Limit(batchSize).
			Find(&batch).Error
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}

func (r *historyRepo) filtered(ctx context.Context, filter HistoryFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.GenerationHistory{})
	db = applyScope(db, "user_id", filter.Scope)
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("username LIKE ? OR template_name LIKE ? OR job_type LIKE ? OR industry LIKE ?", like, like, like, like)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at < ?", *filter.To)
	}
	return db
}
