package repository

import (
	"context"

	"gorm.io/gorm"

	"scout-assist/internal/model"
)

// JobTypeRepository 职种定义数据访问接口
type JobTypeRepository interface {
	Create(ctx context.Context, jt *model.JobType) error
	GetByID(ctx context.Context, id uint) (*model.JobType, error)
	GetByName(ctx context.Context, name string) (*model.JobType, error)
	List(ctx context.Context) ([]model.JobType, error)
	Update(ctx context.Context, jt *model.JobType) error
	Delete(ctx context.Context, id uint) error
	CountTemplates(ctx context.Context, id uint) (int64, error)
}

type jobTypeRepo struct {
	db *gorm.DB
}

// NewJobTypeRepo 创建 JobTypeRepository 实例
func NewJobTypeRepo(db *gorm.DB) JobTypeRepository {
	return &jobTypeRepo{db: db}
}

func (r *jobTypeRepo) Create(ctx context.Context, jt *model.JobType) error {
	return r.db.WithContext(ctx).Create(jt).Error
}

func (r *jobTypeRepo) GetByID(ctx context.Context, id uint) (*model.JobType, error) {
	var jt model.JobType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&jt).Error; err != nil {
		return nil, err
	}
	return &jt, nil
}

func (r *jobTypeRepo) GetByName(ctx context.Context, name string) (*model.JobType, error) {
	var jt model.JobType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&jt).Error; err != nil {
		return nil, err
	}
	return &jt, nil
}

// List 按创建顺序返回全部职种，提示词中的定义顺序依赖此排序
func (r *jobTypeRepo) List(ctx context.Context) ([]model.JobType, error) {
	var list []model.JobType
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *jobTypeRepo) Update(ctx context.Context, jt *model.JobType) error {
	return r.db.WithContext(ctx).Save(jt).Error
}

func (r *jobTypeRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.JobType{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *jobTypeRepo) CountTemplates(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Template{}).
		Where("job_type_id = ?", id).
		Count(&n).Error
	return n, err
}
