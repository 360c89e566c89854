package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scout-assist/config"
	"scout-assist/internal/authz"
	"scout-assist/internal/llm"
	"scout-assist/internal/pricing"
	"scout-assist/internal/repository"
	"scout-assist/pkg/jwt"
)

// TokenBlacklist 已注销 token 的存储（Redis 实现，可为 nil）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	JobType    JobTypeService
	OutputRule OutputRuleService
	Template   TemplateService
	Team       TeamService
	Generation GenerationService
	History    HistoryService
	Usage      UsageService
	Audit      AuditService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	policy *authz.Policy,
	generator llm.Generator,
	logger *zap.Logger,
) *Service {
	audit := NewAuditService(repo, policy, logger)
	usage := NewUsageService(repo, pricing.NewRates(cfg.Pricing), logger)

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, policy, audit, logger),
		User:       NewUserService(repo, policy, logger),
		JobType:    NewJobTypeService(repo, logger),
		OutputRule: NewOutputRuleService(repo, policy, logger),
		Template:   NewTemplateService(repo, policy, logger),
		Team:       NewTeamService(repo, logger),
		Generation: NewGenerationService(&cfg.LLM, repo, generator, usage, logger),
		History:    NewHistoryService(repo, policy, logger),
		Usage:      usage,
		Audit:      audit,
		Export:     NewExportService(repo, logger),
	}
}

// resolveScope 计算主体可见的用户范围
// 拥有 scope.global 的主体不受限；其余主体限于其担任管理者的团队成员（含自身）
func resolveScope(ctx context.Context, repo *repository.Repository, policy *authz.Policy, pr authz.Principal) (repository.UserScope, error) {
	if policy.IsGlobal(pr) {
		return repository.GlobalScope(), nil
	}
	ids, err := repo.Team.ManagedUserIDs(ctx, pr.UserID)
	if err != nil {
		return repository.UserScope{}, err
	}
	return repository.ScopeOf(ids...), nil
}
