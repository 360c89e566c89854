package repository

import (
	"context"

	"gorm.io/gorm"

	"scout-assist/internal/model"
)

// OutputRuleFilter 输出规则筛选条件
// VisibleTo 非空时仅返回启用且分配给该用户所属团队的规则
type OutputRuleFilter struct {
	ActiveOnly bool
	VisibleTo  *uint
}

// OutputRuleRepository 输出规则数据访问接口
type OutputRuleRepository interface {
	Create(ctx context.Context, rule *model.OutputRule) error
	GetByID(ctx context.Context, id uint) (*model.OutputRule, error)
	List(ctx context.Context, filter OutputRuleFilter) ([]model.OutputRule, error)
	Update(ctx context.Context, rule *model.OutputRule) error
	Delete(ctx context.Context, id uint) error
}

type outputRuleRepo struct {
	db *gorm.DB
}

// NewOutputRuleRepo 创建 OutputRuleRepository 实例
func NewOutputRuleRepo(db *gorm.DB) OutputRuleRepository {
	return &outputRuleRepo{db: db}
}

func (r *outputRuleRepo) Create(ctx context.Context, rule *model.OutputRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *outputRuleRepo) GetByID(ctx context.Context, id uint) (*model.OutputRule, error) {
	var rule model.OutputRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *outputRuleRepo) List(ctx context.Context, filter OutputRuleFilter) ([]model.OutputRule, error) {
	var list []model.OutputRule
	db := r.db.WithContext(ctx).Model(&model.OutputRule{})

	if filter.ActiveOnly || filter.VisibleTo != nil {
		db = db.Where("is_active = ?", true)
	}
	if filter.VisibleTo != nil {
		sub := r.db.Model(&model.TeamOutputRule{}).
			Select("team_output_rules.output_rule_id").
			Joins("JOIN team_members ON team_members.team_id = team_output_rules.team_id").
			Where("team_members.user_id = ?", *filter.VisibleTo)
		db = db.Where("id IN (?)", sub)
	}

	err := db.Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *outputRuleRepo) Update(ctx context.Context, rule *model.OutputRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete 删除规则，引用它的模板置空，团队分配一并清理
func (r *outputRuleRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Template{}).
			Where("output_rule_id = ?", id).
			Update("output_rule_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("output_rule_id = ?", id).Delete(&model.TeamOutputRule{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.OutputRule{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
