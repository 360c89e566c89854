package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/model"
	"scout-assist/internal/repository"
	pkgerrors "scout-assist/pkg/errors"
)

// ── 团队模块业务错误 ──

var (
	ErrTeamNotFound       = errors.New("チームが見つかりません")
	ErrTeamNameExists     = errors.New("このチーム名は既に使用されています")
	ErrTeamMemberExists   = errors.New("このユーザーは既にチームのメンバーです")
	ErrTeamMemberNotFound = errors.New("チームメンバーが見つかりません")
)

// TeamService 团队业务接口
type TeamService interface {
	List(ctx context.Context) ([]dto.TeamResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.TeamDetailResponse, error)
	Create(ctx context.Context, req *dto.TeamRequest, pr authz.Principal) (*dto.TeamResponse, error)
	Update(ctx context.Context, id uint, req *dto.TeamRequest, pr authz.Principal) (*dto.TeamResponse, error)
	Delete(ctx context.Context, id uint) error
	AddMember(ctx context.Context, teamID uint, req *dto.AddTeamMemberRequest) (*dto.TeamDetailResponse, error)
	UpdateMember(ctx context.Context, teamID, userID uint, req *dto.UpdateTeamMemberRequest) (*dto.TeamDetailResponse, error)
	RemoveMember(ctx context.Context, teamID, userID uint) error
	AssignTemplates(ctx context.Context, teamID uint, req *dto.TeamAssignmentRequest) (*dto.TeamDetailResponse, error)
	AssignOutputRules(ctx context.Context, teamID uint, req *dto.TeamAssignmentRequest) (*dto.TeamDetailResponse, error)
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *teamService) List(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.List(ctx)
	if err != nil {
		s.logger.Error("查询团队列表失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.TeamResponse, 0, len(teams))
	for _, t := range teams {
		list = append(list, dto.TeamResponse{
			ID:           t.ID,
			Name:         t.Name,
			Description:  t.Description,
			MemberCount:  t.MemberCount,
			ManagerCount: t.ManagerCount,
			CreatedAt:    t.CreatedAt,
		})
	}
	return list, nil
}

func (s *teamService) GetByID(ctx context.Context, id uint) (*dto.TeamDetailResponse, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.Team.ListMembers(ctx, id)
	if err != nil {
		s.logger.Error("查询团队成员失败", zap.Uint("team_id", id), zap.Error(err))
		return nil, err
	}
	templateIDs, err := s.repo.Team.ListTemplateIDs(ctx, id)
	if err != nil {
		s.logger.Error("查询团队模板失败", zap.Uint("team_id", id), zap.Error(err))
		return nil, err
	}
	ruleIDs, err := s.repo.Team.ListOutputRuleIDs(ctx, id)
	if err != nil {
		s.logger.Error("查询团队输出规则失败", zap.Uint("team_id", id), zap.Error(err))
		return nil, err
	}

	detail := &dto.TeamDetailResponse{
		TeamResponse:  toTeamResponse(team),
		Members:       make([]dto.TeamMemberResponse, 0, len(members)),
		TemplateIDs:   nonNil(templateIDs),
		OutputRuleIDs: nonNil(ruleIDs),
	}
	for _, m := range members {
		row := dto.TeamMemberResponse{UserID: m.UserID, IsManager: m.IsManager, JoinedAt: m.CreatedAt}
		if m.User != nil {
			row.Username = m.User.Username
			row.Role = m.User.Role
		}
		if m.IsManager {
			detail.ManagerCount++
		}
		detail.Members = append(detail.Members, row)
	}
	detail.MemberCount = int64(len(members))
	return detail, nil
}

func (s *teamService) Create(ctx context.Context, req *dto.TeamRequest, pr authz.Principal) (*dto.TeamResponse, error) {
	if err := s.checkNameFree(ctx, req.Name); err != nil {
		return nil, err
	}

	team := &model.Team{Name: req.Name, Description: req.Description}
	team.Touch(pr.UserID)
	if err := s.repo.Team.Create(ctx, team); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrTeamNameExists
		}
		s.logger.Error("创建团队失败", zap.Error(err))
		return nil, err
	}

	resp := toTeamResponse(team)
	return &resp, nil
}

func (s *teamService) Update(ctx context.Context, id uint, req *dto.TeamRequest, pr authz.Principal) (*dto.TeamResponse, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != team.Name {
		if err := s.checkNameFree(ctx, req.Name); err != nil {
			return nil, err
		}
	}

	team.Name = req.Name
	team.Description = req.Description
	team.Touch(pr.UserID)
	if err := s.repo.Team.Update(ctx, team); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrTeamNameExists
		}
		s.logger.Error("更新团队失败", zap.Uint("team_id", id), zap.Error(err))
		return nil, err
	}

	resp := toTeamResponse(team)
	return &resp, nil
}

func (s *teamService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Team.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		s.logger.Error("删除团队失败", zap.Uint("team_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 成员 ──────────────────────

func (s *teamService) AddMember(ctx context.Context, teamID uint, req *dto.AddTeamMemberRequest) (*dto.TeamDetailResponse, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Team.GetMember(ctx, teamID, req.UserID); err == nil {
		return nil, ErrTeamMemberExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询团队成员失败", zap.Error(err))
		return nil, err
	}

	member := &model.TeamMember{TeamID: teamID, UserID: req.UserID, IsManager: req.IsManager}
	if err := s.repo.Team.AddMember(ctx, member); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrTeamMemberExists
		}
		s.logger.Error("添加团队成员失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, teamID)
}

func (s *teamService) UpdateMember(ctx context.Context, teamID, userID uint, req *dto.UpdateTeamMemberRequest) (*dto.TeamDetailResponse, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.repo.Team.SetManager(ctx, teamID, userID, *req.IsManager); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamMemberNotFound
		}
		s.logger.Error("更新团队成员失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, teamID)
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, userID uint) error {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.repo.Team.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		s.logger.Error("移除团队成员失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 资源分配 ──────────────────────

func (s *teamService) AssignTemplates(ctx context.Context, teamID uint, req *dto.TeamAssignmentRequest) (*dto.TeamDetailResponse, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	for _, id := range dedupe(req.IDs) {
		if _, err := s.repo.Template.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTemplateNotFound
			}
			s.logger.Error("查询模板失败", zap.Error(err))
			return nil, err
		}
	}
	if err := s.repo.Team.ReplaceTemplates(ctx, teamID, req.IDs); err != nil {
		s.logger.Error("更新团队模板失败", zap.Uint("team_id", teamID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, teamID)
}

func (s *teamService) AssignOutputRules(ctx context.Context, teamID uint, req *dto.TeamAssignmentRequest) (*dto.TeamDetailResponse, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	for _, id := range dedupe(req.IDs) {
		if _, err := s.repo.OutputRule.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOutputRuleNotFound
			}
			s.logger.Error("查询输出规则失败", zap.Error(err))
			return nil, err
		}
	}
	if err := s.repo.Team.ReplaceOutputRules(ctx, teamID, req.IDs); err != nil {
		s.logger.Error("更新团队输出规则失败", zap.Uint("team_id", teamID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, teamID)
}

// ── 内部辅助 ──

func (s *teamService) getTeam(ctx context.Context, id uint) (*model.Team, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询团队失败", zap.Uint("team_id", id), zap.Error(err))
		return nil, err
	}
	return team, nil
}

func (s *teamService) checkNameFree(ctx context.Context, name string) error {
	if _, err := s.repo.Team.GetByName(ctx, name); err == nil {
		return ErrTeamNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查团队名失败", zap.Error(err))
		return err
	}
	return nil
}

func toTeamResponse(t *model.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}
