package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/model"
	"scout-assist/internal/repository"
	pkgerrors "scout-assist/pkg/errors"
)

// ── 模板模块业务错误 ──

var (
	ErrTemplateNotFound   = errors.New("テンプレートが見つかりません")
	ErrTemplateNameExists = errors.New("このテンプレート名は既に使用されています")
	ErrTemplateForbidden  = errors.New("このテンプレートを編集する権限がありません")
)

// TemplateService 模板业务接口
type TemplateService interface {
	List(ctx context.Context, pr authz.Principal) ([]dto.TemplateResponse, error)
	GetByID(ctx context.Context, id uint, pr authz.Principal) (*dto.TemplateResponse, error)
	Create(ctx context.Context, req *dto.CreateTemplateRequest, pr authz.Principal) (*dto.TemplateResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateTemplateRequest, pr authz.Principal) (*dto.TemplateResponse, error)
	Delete(ctx context.Context, id uint, pr authz.Principal) error
	Duplicate(ctx context.Context, id uint, req *dto.DuplicateTemplateRequest, pr authz.Principal) (*dto.TemplateResponse, error)
	ListUsers(ctx context.Context, id uint) ([]dto.UserResponse, error)
	AssignUsers(ctx context.Context, id uint, req *dto.AssignUsersRequest) ([]dto.UserResponse, error)
}

type templateService struct {
	repo   *repository.Repository
	policy *authz.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewTemplateService 创建 TemplateService 实例
func NewTemplateService(repo *repository.Repository, policy *authz.Policy, logger *zap.Logger) TemplateService {
	return &templateService{repo: repo, policy: policy, logger: logger, now: time.Now}
}

// ────────────────────── List ──────────────────────

// List 全局范围主体看到全部模板，其余主体只看到直接或经团队分配的模板
func (s *templateService) List(ctx context.Context, pr authz.Principal) ([]dto.TemplateResponse, error) {
	filter := repository.TemplateFilter{}
	if !s.policy.IsGlobal(pr) {
		uid := pr.UserID
		filter.VisibleTo = &uid
	}

	templates, err := s.repo.Template.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询模板列表失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.TemplateResponse, 0, len(templates))
	for i := range templates {
		list = append(list, toTemplateResponse(&templates[i]))
	}
	return list, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *templateService) GetByID(ctx context.Context, id uint, pr authz.Principal) (*dto.TemplateResponse, error) {
	tpl, err := s.loadVisible(ctx, id, pr)
	if err != nil {
		return nil, err
	}
	resp := toTemplateResponse(tpl)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *templateService) Create(ctx context.Context, req *dto.CreateTemplateRequest, pr authz.Principal) (*dto.TemplateResponse, error) {
	if err := s.checkReferences(ctx, req.JobTypeID, req.OutputRuleID); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, req.Name); err != nil {
		return nil, err
	}

	tpl := &model.Template{
		Name:               req.Name,
		JobTypeID:          req.JobTypeID,
		Industry:           req.Industry,
		CompanyRequirement: req.CompanyRequirement,
		OfferTemplate:      req.OfferTemplate,
		OutputRuleID:       req.OutputRuleID,
	}
	tpl.Touch(pr.UserID)

	// 非全局主体创建的模板自动分配给自己，保证创建后可见
	var assign []uint
	if !s.policy.IsGlobal(pr) {
		assign = []uint{pr.UserID}
	}

	if err := s.repo.Template.Create(ctx, tpl, assign); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrTemplateNameExists
		}
		s.logger.Error("创建模板失败", zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, tpl.ID)
}

// ────────────────────── Update ──────────────────────

func (s *templateService) Update(ctx context.Context, id uint, req *dto.UpdateTemplateRequest, pr authz.Principal) (*dto.TemplateResponse, error) {
	tpl, err := s.loadEditable(ctx, id, pr)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != tpl.Name {
		if err := s.checkNameFree(ctx, *req.Name); err != nil {
			return nil, err
		}
		tpl.Name = *req.Name
	}
	if req.JobTypeID != nil {
		tpl.JobTypeID = *req.JobTypeID
	}
	if req.Industry != nil {
		tpl.Industry = *req.Industry
	}
	if req.CompanyRequirement != nil {
		tpl.CompanyRequirement = *req.CompanyRequirement
	}
	if req.OfferTemplate != nil {
		tpl.OfferTemplate = *req.OfferTemplate
	}
	if req.ClearOutputRule {
		tpl.OutputRuleID = nil
	} else if req.OutputRuleID != nil {
		tpl.OutputRuleID = req.OutputRuleID
	}

	if err := s.checkReferences(ctx, tpl.JobTypeID, tpl.OutputRuleID); err != nil {
		return nil, err
	}
	tpl.JobType, tpl.OutputRule = nil, nil
	tpl.Touch(pr.UserID)

	if err := s.repo.Template.Update(ctx, tpl); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrTemplateNameExists
		}
		s.logger.Error("更新模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, tpl.ID)
}

// ────────────────────── Delete ──────────────────────

func (s *templateService) Delete(ctx context.Context, id uint, pr authz.Principal) error {
	if _, err := s.loadEditable(ctx, id, pr); err != nil {
		return err
	}

	if err := s.repo.Template.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		s.logger.Error("删除模板失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Duplicate ──────────────────────

// Duplicate 复制模板
// 未指定名称时以 "<原名>_<yyyyMMddHHmmss>" 命名；全局主体复制原有全部分配，其余主体仅分配给自己
func (s *templateService) Duplicate(ctx context.Context, id uint, req *dto.DuplicateTemplateRequest, pr authz.Principal) (*dto.TemplateResponse, error) {
	src, err := s.loadVisible(ctx, id, pr)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s_%s", src.Name, s.now().Format("20060102150405"))
	}
	if err := s.checkNameFree(ctx, name); err != nil {
		return nil, err
	}

	copied, err := s.repo.Template.Duplicate(ctx, src.ID, name, repository.DuplicateOptions{
		CopyAssignments: s.policy.IsGlobal(pr),
		AssignUserID:    pr.UserID,
		ActorID:         pr.UserID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrTemplateNameExists
		}
		s.logger.Error("复制模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("模板已复制", zap.Uint("src", src.ID), zap.Uint("dst", copied.ID), zap.Uint("operator", pr.UserID))
	return s.reload(ctx, copied.ID)
}

// ────────────────────── 分配 ──────────────────────

func (s *templateService) ListUsers(ctx context.Context, id uint) ([]dto.UserResponse, error) {
	if _, err := s.repo.Template.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	users, err := s.repo.Template.ListAssignedUsers(ctx, id)
	if err != nil {
		s.logger.Error("查询模板分配失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, toUserResponse(&users[i]))
	}
	return list, nil
}

// AssignUsers 以请求中的用户集合整体替换分配
func (s *templateService) AssignUsers(ctx context.Context, id uint, req *dto.AssignUsersRequest) ([]dto.UserResponse, error) {
	if _, err := s.repo.Template.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	ids := dedupe(req.UserIDs)
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, ErrUserNotFound
	}

	if err := s.repo.Template.ReplaceAssignments(ctx, id, ids); err != nil {
		s.logger.Error("更新模板分配失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return s.ListUsers(ctx, id)
}

// ── 内部辅助 ──

func (s *templateService) loadVisible(ctx context.Context, id uint, pr authz.Principal) (*model.Template, error) {
	tpl, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	if s.policy.IsGlobal(pr) {
		return tpl, nil
	}

	visible, err := s.repo.Template.IsVisibleTo(ctx, id, pr.UserID)
	if err != nil {
		s.logger.Error("检查模板可见性失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	if !visible {
		return nil, ErrTemplateNotFound
	}
	return tpl, nil
}

// loadEditable 全局主体或直接被分配的用户可编辑
func (s *templateService) loadEditable(ctx context.Context, id uint, pr authz.Principal) (*model.Template, error) {
	tpl, err := s.loadVisible(ctx, id, pr)
	if err != nil {
		return nil, err
	}
	if s.policy.IsGlobal(pr) {
		return tpl, nil
	}

	assigned, err := s.repo.Template.IsAssignedTo(ctx, id, pr.UserID)
	if err != nil {
		s.logger.Error("检查模板分配失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	if !assigned {
		return nil, ErrTemplateForbidden
	}
	return tpl, nil
}

func (s *templateService) checkReferences(ctx context.Context, jobTypeID uint, outputRuleID *uint) error {
	if _, err := s.repo.JobType.GetByID(ctx, jobTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobTypeNotFound
		}
		s.logger.Error("查询职种失败", zap.Error(err))
		return err
	}
	if outputRuleID != nil {
		if _, err := s.repo.OutputRule.GetByID(ctx, *outputRuleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOutputRuleNotFound
			}
			s.logger.Error("查询输出规则失败", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *templateService) checkNameFree(ctx context.Context, name string) error {
	if _, err := s.repo.Template.GetByName(ctx, name); err == nil {
		return ErrTemplateNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查模板名失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *templateService) reload(ctx context.Context, id uint) (*dto.TemplateResponse, error) {
	tpl, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("重新加载模板失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	resp := toTemplateResponse(tpl)
	return &resp, nil
}

func toTemplateResponse(t *model.Template) dto.TemplateResponse {
	resp := dto.TemplateResponse{
		ID:                 t.ID,
		Name:               t.Name,
		JobTypeID:          t.JobTypeID,
		Industry:           t.Industry,
		CompanyRequirement: t.CompanyRequirement,
		OfferTemplate:      t.OfferTemplate,
		OutputRuleID:       t.OutputRuleID,
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if t.JobType != nil {
		resp.JobTypeName = t.JobType.Name
	}
	if t.OutputRule != nil {
		resp.OutputRuleName = t.OutputRule.Name
	}
	return resp
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
