package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scout-assist/config"
	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/llm"
	"scout-assist/internal/model"
	"scout-assist/internal/prompt"
	"scout-assist/internal/repository"
)

// ── 生成模块业务错误 ──

var (
	ErrGenerateInvalidInput = errors.New("必須項目が入力されていません")
	ErrHistoryNotFound      = errors.New("生成履歴が見つかりません")
)

// GenerationService 文案生成与个人历史业务接口
type GenerationService interface {
	Generate(ctx context.Context, req *dto.GenerateRequest, pr authz.Principal) (*dto.GenerateResponse, error)
	ListMyHistory(ctx context.Context, req *dto.HistoryListRequest, pr authz.Principal) ([]dto.HistoryResponse, int64, error)
	DeleteMyHistory(ctx context.Context, id uint, pr authz.Principal) error
}

type generationService struct {
	cfg       *config.LLMConfig
	repo      *repository.Repository
	generator llm.Generator
	usage     UsageService
	logger    *zap.Logger
}

// NewGenerationService 创建 GenerationService 实例
func NewGenerationService(
	cfg *config.LLMConfig,
	repo *repository.Repository,
	generator llm.Generator,
	usage UsageService,
	logger *zap.Logger,
) GenerationService {
	return &generationService{cfg: cfg, repo: repo, generator: generator, usage: usage, logger: logger}
}

// ────────────────────── Generate ──────────────────────

// Generate 校验输入 → 解析职种/输出规则/模板 → 组装提示词 → 调用一次生成网关
// → 记录用量 → 记录历史。用量与历史写入失败不影响返回结果
func (s *generationService) Generate(ctx context.Context, req *dto.GenerateRequest, pr authz.Principal) (*dto.GenerateResponse, error) {
	in := prompt.Input{
		Industry:           strings.TrimSpace(req.Industry),
		CompanyRequirement: strings.TrimSpace(req.CompanyRequirement),
		OfferTemplate:      strings.TrimSpace(req.OfferTemplate),
		StudentProfile:     strings.TrimSpace(req.StudentProfile),
	}
	if req.JobTypeID == 0 || req.OutputRuleID == 0 ||
		in.Industry == "" || in.CompanyRequirement == "" || in.OfferTemplate == "" || in.StudentProfile == "" {
		return nil, ErrGenerateInvalidInput
	}

	// ── 解析引用（必须存在） ──
	jobType, err := s.repo.JobType.GetByID(ctx, req.JobTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobTypeNotFound
		}
		s.logger.Error("查询职种失败", zap.Uint("job_type_id", req.JobTypeID), zap.Error(err))
		return nil, err
	}

	rule, err := s.repo.OutputRule.GetByID(ctx, req.OutputRuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutputRuleNotFound
		}
		s.logger.Error("查询输出规则失败", zap.Uint("output_rule_id", req.OutputRuleID), zap.Error(err))
		return nil, err
	}

	var templateName string
	if req.TemplateID != nil {
		tpl, err := s.repo.Template.GetByID(ctx, *req.TemplateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTemplateNotFound
			}
			s.logger.Error("查询模板失败", zap.Uint("template_id", *req.TemplateID), zap.Error(err))
			return nil, err
		}
		templateName = tpl.Name
	}

	all, err := s.repo.JobType.List(ctx)
	if err != nil {
		s.logger.Error("查询职种列表失败", zap.Error(err))
		return nil, err
	}
	defs := make([]prompt.JobTypeDefinition, 0, len(all))
	for _, jt := range all {
		defs = append(defs, prompt.JobTypeDefinition{Name: jt.Name, Definition: jt.Definition})
	}

	p := prompt.Build(prompt.Selection{
		JobTypes:       defs,
		JobType:        prompt.JobTypeDefinition{Name: jobType.Name, Definition: jobType.Definition},
		OutputRuleText: rule.RuleText,
	}, in)

	// ── 调用生成网关（仅一次） ──
	result, err := s.generator.Generate(ctx, llm.Request{
		System:    p.System,
		User:      p.User,
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("生成调用失败",
			zap.Uint("user_id", pr.UserID),
			zap.String("job_type", jobType.Name),
			zap.Error(err),
		)
		return nil, err
	}

	modelName := result.Model
	if modelName == "" {
		modelName = s.cfg.Model
	}
	usage := s.usage.Record(ctx, pr.UserID, modelName, result.Usage)

	history := &model.GenerationHistory{
		UserID:             pr.UserID,
		Username:           pr.Username,
		TemplateName:       templateName,
		JobType:            jobType.Name,
		Industry:           in.Industry,
		CompanyRequirement: in.CompanyRequirement,
		OfferTemplate:      in.OfferTemplate,
		OutputRuleName:     rule.Name,
		StudentProfile:     in.StudentProfile,
		GeneratedComment:   result.Text,
	}
	if err := s.repo.History.Create(ctx, history); err != nil {
		s.logger.Warn("写入生成历史失败", zap.Uint("user_id", pr.UserID), zap.Error(err))
		history.ID = 0
	}

	return &dto.GenerateResponse{
		Comment:   result.Text,
		HistoryID: history.ID,
		Usage: dto.UsageBrief{
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			TotalTokens:  usage.TotalTokens,
			TotalCost:    usage.TotalCost.String(),
		},
	}, nil
}

// ────────────────────── 个人历史 ──────────────────────

func (s *generationService) ListMyHistory(ctx context.Context, req *dto.HistoryListRequest, pr authz.Principal) ([]dto.HistoryResponse, int64, error) {
	uid := pr.UserID
	filter := repository.HistoryFilter{
		Scope:   repository.ScopeOf(uid),
		UserID:  &uid,
		Keyword: req.Keyword,
		From:    req.From,
		To:      req.To,
	}
	rows, total, err := s.repo.History.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询个人生成历史失败", zap.Uint("user_id", uid), zap.Error(err))
		return nil, 0, err
	}
	return toHistoryResponses(rows), total, nil
}

// DeleteMyHistory 只能删除本人的历史，他人记录一律视为不存在
func (s *generationService) DeleteMyHistory(ctx context.Context, id uint, pr authz.Principal) error {
	h, err := s.repo.History.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHistoryNotFound
		}
		s.logger.Error("查询生成历史失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if h.UserID != pr.UserID {
		return ErrHistoryNotFound
	}
	if err := s.repo.History.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHistoryNotFound
		}
		s.logger.Error("删除生成历史失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toHistoryResponse(h *model.GenerationHistory) dto.HistoryResponse {
	return dto.HistoryResponse{
		ID:                 h.ID,
		UserID:             h.UserID,
		Username:           h.Username,
		TemplateName:       h.TemplateName,
		JobType:            h.JobType,
		Industry:           h.Industry,
		CompanyRequirement: h.CompanyRequirement,
		OfferTemplate:      h.OfferTemplate,
		OutputRuleName:     h.OutputRuleName,
		StudentProfile:     h.StudentProfile,
		GeneratedComment:   h.GeneratedComment,
		CreatedAt:          h.CreatedAt,
	}
}

func toHistoryResponses(rows []model.GenerationHistory) []dto.HistoryResponse {
	list := make([]dto.HistoryResponse, 0, len(rows))
	for i := range rows {
		list = append(list, toHistoryResponse(&rows[i]))
	}
	return list
}
