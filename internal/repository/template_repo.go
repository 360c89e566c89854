package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scout-assist/internal/model"
)

// TemplateFilter 模板列表筛选条件
// VisibleTo 非空时仅返回直接分配给该用户或分配给其所属团队的模板
type TemplateFilter struct {
	VisibleTo *uint
	JobTypeID *uint
}

// TemplateRepository 模板数据访问接口
type TemplateRepository interface {
	Create(ctx context.Context, tpl *model.Template, assignUserIDs []uint) error
	GetByID(ctx context.Context, id uint) (*model.Template, error)
	GetByName(ctx context.Context, name string) (*model.Template, error)
	List(ctx context.Context, filter TemplateFilter) ([]model.Template, error)
	Update(ctx context.Context, tpl *model.Template) error
	Delete(ctx context.Context, id uint) error
	IsVisibleTo(ctx context.Context, templateID, userID uint) (bool, error)
	IsAssignedTo(ctx context.Context, templateID, userID uint) (bool, error)
	ListAssignedUsers(ctx context.Context, templateID uint) ([]model.User, error)
	ReplaceAssignments(ctx context.Context, templateID uint, userIDs []uint) error
	Duplicate(ctx context.Context, srcID uint, newName string, opts DuplicateOptions) (*model.Template, error)
}

// DuplicateOptions 模板复制选项
// CopyAssignments 为 true 时复制源模板的全部用户分配，否则仅分配给 AssignUserID
type DuplicateOptions struct {
	CopyAssignments bool
	AssignUserID    uint
	ActorID         uint
}

type templateRepo struct {
	db *gorm.DB
}

// NewTemplateRepo 创建 TemplateRepository 实例
func NewTemplateRepo(db *gorm.DB) TemplateRepository {
	return &templateRepo{db: db}
}

// Create 创建模板并写入初始分配（同一事务）
func (r *templateRepo) Create(ctx context.Context, tpl *model.Template, assignUserIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(tpl).Error; err != nil {
			return err
		}
		return insertAssignments(tx, tpl.ID, assignUserIDs)
	})
}

func (r *templateRepo) GetByID(ctx context.Context, id uint) (*model.Template, error) {
	var tpl model.Template
	err := r.db.WithContext(ctx).
		Preload("JobType").
		Preload("OutputRule").
		Where("id = ?", id).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) GetByName(ctx context.Context, name string) (*model.Template, error) {
	var tpl model.Template
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) List(ctx context.Context, filter TemplateFilter) ([]model.Template, error) {
	var list []model.Template
	db := r.db.WithContext(ctx).
		Preload("JobType").
		Preload("OutputRule")

	if filter.VisibleTo != nil {
		db = db.Where("id IN (?) OR id IN (?)",
			r.directAssignments(*filter.VisibleTo),
			r.teamAssignments(*filter.VisibleTo),
		)
	}
	if filter.JobTypeID != nil {
		db = db.Where("job_type_id = ?", *filter.JobTypeID)
	}

	err := db.Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *templateRepo) Update(ctx context.Context, tpl *model.Template) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(tpl).Error
}

// Delete 删除模板及其用户/团队分配
func (r *templateRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&model.TemplateAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&model.TeamTemplate{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Template{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *templateRepo) IsVisibleTo(ctx context.Context, templateID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Template{}).
		Where("id = ?", templateID).
		Where("id IN (?) OR id IN (?)", r.directAssignments(userID), r.teamAssignments(userID)).
		Count(&n).Error
	return n > 0, err
}

func (r *templateRepo) IsAssignedTo(ctx context.Context, templateID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TemplateAssignment{}).
		Where("template_id = ? AND user_id = ?", templateID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *templateRepo) ListAssignedUsers(ctx context.Context, templateID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN template_assignments ON template_assignments.user_id = users.id").
		Where("template_assignments.template_id = ?", templateID).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

// ReplaceAssignments 以给定用户集合整体替换模板分配
func (r *templateRepo) ReplaceAssignments(ctx context.Context, templateID uint, userIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&model.TemplateAssignment{}).Error; err != nil {
			return err
		}
		return insertAssignments(tx, templateID, userIDs)
	})
}

// Duplicate 复制模板与分配关系，任一步失败整体回滚
func (r *templateRepo) Duplicate(ctx context.Context, srcID uint, newName string, opts DuplicateOptions) (*model.Template, error) {
	var copied *model.Template
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src model.Template
		if err := tx.Where("id = ?", srcID).First(&src).Error; err != nil {
			return err
		}

		dst := model.Template{
			Name:               newName,
			JobTypeID:          src.JobTypeID,
			Industry:           src.Industry,
			CompanyRequirement: src.CompanyRequirement,
			OfferTemplate:      src.OfferTemplate,
			OutputRuleID:       src.OutputRuleID,
		}
		dst.Touch(opts.ActorID)
		if err := tx.Omit(clause.Associations).Create(&dst).Error; err != nil {
			return err
		}

		userIDs := []uint{opts.AssignUserID}
		if opts.CopyAssignments {
			userIDs = nil
			if err := tx.Model(&model.TemplateAssignment{}).
				Where("template_id = ?", srcID).
				Order("user_id ASC").
				Pluck("user_id", &userIDs).Error; err != nil {
				return err
			}
		}
		if err := insertAssignments(tx, dst.ID, userIDs); err != nil {
			return err
		}

		copied = &dst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// ── 内部辅助 ──

func (r *templateRepo) directAssignments(userID uint) *gorm.DB {
	return r.db.Model(&model.TemplateAssignment{}).
		Select("template_id").
		Where("user_id = ?", userID)
}

func (r *templateRepo) teamAssignments(userID uint) *gorm.DB {
	return r.db.Model(&model.TeamTemplate{}).
		Select("team_templates.template_id").
		Joins("JOIN team_members ON team_members.team_id = team_templates.team_id").
		Where("team_members.user_id = ?", userID)
}

func insertAssignments(tx *gorm.DB, templateID uint, userIDs []uint) error {
	rows := make([]model.TemplateAssignment, 0, len(userIDs))
	for _, uid := range uniqueIDs(userIDs) {
		rows = append(rows, model.TemplateAssignment{TemplateID: templateID, UserID: uid})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
