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
)

// ── 输出规则模块业务错误 ──

var (
	ErrOutputRuleNotFound = errors.New("出力ルールが見つかりません")
)

// OutputRuleService 输出规则业务接口
type OutputRuleService interface {
	List(ctx context.Context, pr authz.Principal) ([]dto.OutputRuleResponse, error)
	GetByID(ctx context.Context, id uint, pr authz.Principal) (*dto.OutputRuleResponse, error)
	Create(ctx context.Context, req *dto.CreateOutputRuleRequest, pr authz.Principal) (*dto.OutputRuleResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateOutputRuleRequest, pr authz.Principal) (*dto.OutputRuleResponse, error)
	Delete(ctx context.Context, id uint) error
}

type outputRuleService struct {
	repo   *repository.Repository
	policy *authz.Policy
	logger *zap.Logger
}

// NewOutputRuleService 创建 OutputRuleService 实例
func NewOutputRuleService(repo *repository.Repository, policy *authz.Policy, logger *zap.Logger) OutputRuleService {
	return &outputRuleService{repo: repo, policy: policy, logger: logger}
}

// filterFor 管理者看到全部规则，普通用户只看到分配给所属团队的启用规则
func (s *outputRuleService) filterFor(pr authz.Principal) repository.OutputRuleFilter {
	if s.policy.Can(pr.Role, authz.CapManageOutputRules) {
		return repository.OutputRuleFilter{}
	}
	uid := pr.UserID
	return repository.OutputRuleFilter{VisibleTo: &uid}
}

// ────────────────────── List ──────────────────────

func (s *outputRuleService) List(ctx context.Context, pr authz.Principal) ([]dto.OutputRuleResponse, error) {
	rules, err := s.repo.OutputRule.List(ctx, s.filterFor(pr))
	if err != nil {
		s.logger.Error("查询输出规则失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.OutputRuleResponse, 0, len(rules))
	for i := range rules {
		list = append(list, toOutputRuleResponse(&rules[i]))
	}
	return list, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *outputRuleService) GetByID(ctx context.Context, id uint, pr authz.Principal) (*dto.OutputRuleResponse, error) {
	rule, err := s.repo.OutputRule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutputRuleNotFound
		}
		s.logger.Error("查询输出规则失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if f := s.filterFor(pr); f.VisibleTo != nil {
		visible, err := s.repo.OutputRule.List(ctx, f)
		if err != nil {
			s.logger.Error("查询可见输出规则失败", zap.Error(err))
			return nil, err
		}
		found := false
		for _, r := range visible {
			if r.ID == id {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrOutputRuleNotFound
		}
	}

	resp := toOutputRuleResponse(rule)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *outputRuleService) Create(ctx context.Context, req *dto.CreateOutputRuleRequest, pr authz.Principal) (*dto.OutputRuleResponse, error) {
	rule := &model.OutputRule{
		Name:        req.Name,
		RuleText:    req.RuleText,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.Touch(pr.UserID)

	if err := s.repo.OutputRule.Create(ctx, rule); err != nil {
		s.logger.Error("创建输出规则失败", zap.Error(err))
		return nil, err
	}

	resp := toOutputRuleResponse(rule)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *outputRuleService) Update(ctx context.Context, id uint, req *dto.UpdateOutputRuleRequest, pr authz.Principal) (*dto.OutputRuleResponse, error) {
	rule, err := s.repo.OutputRule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutputRuleNotFound
		}
		s.logger.Error("查询输出规则失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.RuleText != nil {
		rule.RuleText = *req.RuleText
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.Touch(pr.UserID)

	if err := s.repo.OutputRule.Update(ctx, rule); err != nil {
		s.logger.Error("更新输出规则失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := toOutputRuleResponse(rule)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *outputRuleService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.OutputRule.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOutputRuleNotFound
		}
		s.logger.Error("删除输出规则失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toOutputRuleResponse(r *model.OutputRule) dto.OutputRuleResponse {
	return dto.OutputRuleResponse{
		ID:          r.ID,
		Name:        r.Name,
		RuleText:    r.RuleText,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
