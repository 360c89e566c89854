package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/model"
	"scout-assist/internal/repository"
)

// AuditService 登录/操作日志业务接口
// Record* 为 fire-and-forget：写入失败只记录 Warn 日志，不影响主操作结果
type AuditService interface {
	RecordLogin(ctx context.Context, user *model.User, meta dto.LoginMeta)
	RecordActivity(ctx context.Context, pr authz.Principal, action string, detail map[string]interface{})
	ListLoginLogs(ctx context.Context, req *dto.LogListRequest, pr authz.Principal) ([]dto.LoginLogResponse, int64, error)
	ListActivityLogs(ctx context.Context, req *dto.LogListRequest, pr authz.Principal) ([]dto.ActivityLogResponse, int64, error)
}

type auditService struct {
	repo   *repository.Repository
	policy *authz.Policy
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, policy *authz.Policy, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, policy: policy, logger: logger}
}

// ────────────────────── 记录 ──────────────────────

func (s *auditService) RecordLogin(ctx context.Context, user *model.User, meta dto.LoginMeta) {
	log := &model.LoginLog{
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.repo.Audit.CreateLoginLog(ctx, log); err != nil {
		s.logger.Warn("写入登录日志失败", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (s *auditService) RecordActivity(ctx context.Context, pr authz.Principal, action string, detail map[string]interface{}) {
	var raw datatypes.JSON
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			s.logger.Warn("序列化操作日志失败", zap.String("action", action), zap.Error(err))
		} else {
			raw = datatypes.JSON(b)
		}
	}

	log := &model.ActivityLog{
		UserID:   pr.UserID,
		Username: pr.Username,
		Action:   action,
		Detail:   raw,
	}
	if err := s.repo.Audit.CreateActivityLog(ctx, log); err != nil {
		s.logger.Warn("写入操作日志失败",
			zap.Uint("user_id", pr.UserID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// ────────────────────── 查询 ──────────────────────

func (s *auditService) ListLoginLogs(ctx context.Context, req *dto.LogListRequest, pr authz.Principal) ([]dto.LoginLogResponse, int64, error) {
	scope, err := resolveScope(ctx, s.repo, s.policy, pr)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, 0, err
	}

	logs, total, err := s.repo.Audit.ListLoginLogs(ctx, repository.LogFilter{
		Scope:  scope,
		UserID: req.UserID,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询登录日志失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.LoginLogResponse, 0, len(logs))
	for _, l := range logs {
		list = append(list, dto.LoginLogResponse{
			ID:        l.ID,
			UserID:    l.UserID,
			Username:  l.Username,
			IPAddress: l.IPAddress,
			UserAgent: l.UserAgent,
			LoginAt:   l.CreatedAt,
		})
	}
	return list, total, nil
}

func (s *auditService) ListActivityLogs(ctx context.Context, req *dto.LogListRequest, pr authz.Principal) ([]dto.ActivityLogResponse, int64, error) {
	scope, err := resolveScope(ctx, s.repo, s.policy, pr)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, 0, err
	}

	logs, total, err := s.repo.Audit.ListActivityLogs(ctx, repository.LogFilter{
		Scope:  scope,
		UserID: req.UserID,
		Action: req.Action,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询操作日志失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		list = append(list, dto.ActivityLogResponse{
			ID:        l.ID,
			UserID:    l.UserID,
			Username:  l.Username,
			Action:    l.Action,
			Detail:    json.RawMessage(l.Detail),
			CreatedAt: l.CreatedAt,
		})
	}
	return list, total, nil
}
