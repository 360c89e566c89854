package repository

import (
	"context"

	"gorm.io/gorm"

	"scout-assist/internal/model"
)

// TeamRepository 团队数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id uint) (*model.Team, error)
	GetByName(ctx context.Context, name string) (*model.Team, error)
	List(ctx context.Context) ([]model.TeamSummary, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Team, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id uint) error

	// ── 成员 ──
	AddMember(ctx context.Context, member *model.TeamMember) error
	GetMember(ctx context.Context, teamID, userID uint) (*model.TeamMember, error)
	SetManager(ctx context.Context, teamID, userID uint, isManager bool) error
	RemoveMember(ctx context.Context, teamID, userID uint) error
	ListMembers(ctx context.Context, teamID uint) ([]model.TeamMember, error)
	ManagedUserIDs(ctx context.Context, managerID uint) ([]uint, error)

	// ── 资源分配 ──
	ListTemplateIDs(ctx context.Context, teamID uint) ([]uint, error)
	ReplaceTemplates(ctx context.Context, teamID uint, templateIDs []uint) error
	ListOutputRuleIDs(ctx context.Context, teamID uint) ([]uint, error)
	ReplaceOutputRules(ctx context.Context, teamID uint, ruleIDs []uint) error
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id uint) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetByName(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List 返回全部团队及成员/管理者数量
func (r *teamRepo) List(ctx context.Context) ([]model.TeamSummary, error) {
	var teams []model.Team
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&teams).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		TeamID       uint
		MemberCount  int64
		ManagerCount int64
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&model.TeamMember{}).
		Select("team_id, COUNT(*) AS member_count, SUM(CASE WHEN is_manager THEN 1 ELSE 0 END) AS manager_count").
		Group("team_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]countRow, len(rows))
	for _, row := range rows {
		counts[row.TeamID] = row
	}

	list := make([]model.TeamSummary, 0, len(teams))
	for _, t := range teams {
		c := counts[t.ID]
		list = append(list, model.TeamSummary{Team: t, MemberCount: c.MemberCount, ManagerCount: c.ManagerCount})
	}
	return list, nil
}

// ListByUser 返回用户所属的团队
func (r *teamRepo) ListByUser(ctx context.Context, userID uint) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.name ASC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepo) Update(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

// Delete 删除团队及其成员、模板、输出规则分配
func (r *teamRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.TeamMember{}, &model.TeamTemplate{}, &model.TeamOutputRule{}} {
			if err := tx.Where("team_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&model.Team{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ────── 成员 ──────

func (r *teamRepo) AddMember(ctx context.Context, member *model.TeamMember) error {
	return r.db.WithContext(ctx).Omit("User").Create(member).Error
}

func (r *teamRepo) GetMember(ctx context.Context, teamID, userID uint) (*model.TeamMember, error) {
	var m model.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *teamRepo) SetManager(ctx context.Context, teamID, userID uint, isManager bool) error {
	res := r.db.WithContext(ctx).Model(&model.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("is_manager", isManager)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamRepo) RemoveMember(ctx context.Context, teamID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&model.TeamMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamRepo) ListMembers(ctx context.Context, teamID uint) ([]model.TeamMember, error) {
	var members []model.TeamMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("team_id = ?", teamID).
		Order("is_manager DESC, user_id ASC").
		Find(&members).Error
	return members, err
}

// ManagedUserIDs 返回 managerID 作为管理者的所有团队中的成员 ID（含自身）
func (r *teamRepo) ManagedUserIDs(ctx context.Context, managerID uint) ([]uint, error) {
	managed := r.db.Model(&model.TeamMember{}).
		Select("team_id").
		Where("user_id = ? AND is_manager = ?", managerID, true)

	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.TeamMember{}).
		Distinct("user_id").
		Where("team_id IN (?)", managed).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if id == managerID {
			return ids, nil
		}
	}
	return append(ids, managerID), nil
}

// ────── 资源分配 ──────

func (r *teamRepo) ListTemplateIDs(ctx context.Context, teamID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.TeamTemplate{}).
		Where("team_id = ?", teamID).
		Order("template_id ASC").
		Pluck("template_id", &ids).Error
	return ids, err
}

func (r *teamRepo) ReplaceTemplates(ctx context.Context, teamID uint, templateIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&model.TeamTemplate{}).Error; err != nil {
			return err
		}
		rows := make([]model.TeamTemplate, 0, len(templateIDs))
		for _, id := range uniqueIDs(templateIDs) {
			rows = append(rows, model.TeamTemplate{TeamID: teamID, TemplateID: id})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *teamRepo) ListOutputRuleIDs(ctx context.Context, teamID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.TeamOutputRule{}).
		Where("team_id = ?", teamID).
		Order("output_rule_id ASC").
		Pluck("output_rule_id", &ids).Error
	return ids, err
}

func (r *teamRepo) ReplaceOutputRules(ctx context.Context, teamID uint, ruleIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&model.TeamOutputRule{}).Error; err != nil {
			return err
		}
		rows := make([]model.TeamOutputRule, 0, len(ruleIDs))
		for _, id := range uniqueIDs(ruleIDs) {
			rows = append(rows, model.TeamOutputRule{TeamID: teamID, OutputRuleID: id})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
