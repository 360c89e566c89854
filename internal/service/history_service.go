package service

import (
	"context"

	"go.uber.org/zap"

	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/repository"
)

// HistoryService 管理端生成历史查询（只读）
type HistoryService interface {
	List(ctx context.Context, req *dto.HistoryListRequest, pr authz.Principal) ([]dto.HistoryResponse, int64, error)
}

type historyService struct {
	repo   *repository.Repository
	policy *authz.Policy
	logger *zap.Logger
}

// NewHistoryService 创建 HistoryService 实例
func NewHistoryService(repo *repository.Repository, policy *authz.Policy, logger *zap.Logger) HistoryService {
	return &historyService{repo: repo, policy: policy, logger: logger}
}

// List 管理员查看全部，团队管理者只看到所管团队成员的记录
func (s *historyService) List(ctx context.Context, req *dto.HistoryListRequest, pr authz.Principal) ([]dto.HistoryResponse, int64, error) {
	scope, err := resolveScope(ctx, s.repo, s.policy, pr)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Uint("user_id", pr.UserID), zap.Error(err))
		return nil, 0, err
	}

	rows, total, err := s.repo.History.List(ctx, repository.HistoryFilter{
		Scope:   scope,
		UserID:  req.UserID,
		Keyword: req.Keyword,
		From:    req.From,
		To:      req.To,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询生成历史失败", zap.Error(err))
		return nil, 0, err
	}
	return toHistoryResponses(rows), total, nil
}
