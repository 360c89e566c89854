package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"scout-assist/internal/dto"
	"scout-assist/internal/llm"
	"scout-assist/internal/model"
	"scout-assist/internal/pricing"
	"scout-assist/internal/repository"
)

// UsageService API 用量记录与统计
type UsageService interface {
	// Record 记录一次成功调用的用量，写入失败仅记录日志
	Record(ctx context.Context, userID uint, model string, usage llm.Usage) *model.UsageLog
	Stats(ctx context.Context, req *dto.UsageStatsRequest) (*dto.UsageStatsResponse, error)
}

type usageService struct {
	repo   *repository.Repository
	rates  pricing.Rates
	logger *zap.Logger
}

// NewUsageService 创建 UsageService 实例
func NewUsageService(repo *repository.Repository, rates pricing.Rates, logger *zap.Logger) UsageService {
	return &usageService{repo: repo, rates: rates, logger: logger}
}

func (s *usageService) Record(ctx context.Context, userID uint, modelName string, usage llm.Usage) *model.UsageLog {
	uid := userID
	log := &model.UsageLog{
		UserID:       &uid,
		Model:        modelName,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.Total(),
		TotalCost:    s.rates.Cost(usage.InputTokens, usage.OutputTokens),
	}
	if err := s.repo.Usage.Create(ctx, log); err != nil {
		s.logger.Warn("写入用量记录失败",
			zap.Uint("user_id", userID),
			zap.Int64("total_tokens", log.TotalTokens),
			zap.String("total_cost", log.TotalCost.String()),
			zap.Error(err),
		)
	}
	return log
}

// Stats 汇总、按月（YYYY-MM）与按用户统计
func (s *usageService) Stats(ctx context.Context, req *dto.UsageStatsRequest) (*dto.UsageStatsResponse, error) {
	var since time.Time
	if req != nil && req.Since != nil {
		since = *req.Since
	}

	logs, err := s.repo.Usage.ListSince(ctx, since)
	if err != nil {
		s.logger.Error("查询用量记录失败", zap.Error(err))
		return nil, err
	}

	type agg struct {
		requests int64
		tokens   int64
		cost     decimal.Decimal
	}
	total := agg{}
	var inputTokens, outputTokens int64
	monthly := make(map[string]*agg)
	byUser := make(map[uint]*agg)

	for _, l := range logs {
		total.requests++
		total.tokens += l.TotalTokens
		total.cost = total.cost.Add(l.TotalCost)
		inputTokens += l.InputTokens
		outputTokens += l.OutputTokens

		month := l.CreatedAt.Format("2006-01")
		m, ok := monthly[month]
		if !ok {
			m = &agg{}
			monthly[month] = m
		}
		m.requests++
		m.tokens += l.TotalTokens
		m.cost = m.cost.Add(l.TotalCost)

		if l.UserID != nil {
			u, ok := byUser[*l.UserID]
			if !ok {
				u = &agg{}
				byUser[*l.UserID] = u
			}
			u.requests++
			u.tokens += l.TotalTokens
			u.cost = u.cost.Add(l.TotalCost)
		}
	}

	resp := &dto.UsageStatsResponse{
		TotalRequests: total.requests,
		TotalTokens:   total.tokens,
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		TotalCost:     total.cost.String(),
		Monthly:       make([]dto.UsageBucket, 0, len(monthly)),
		ByUser:        make([]dto.UserUsageRow, 0, len(byUser)),
	}

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		a := monthly[m]
		resp.Monthly = append(resp.Monthly, dto.UsageBucket{
			Month: m, Requests: a.requests, TotalTokens: a.tokens, TotalCost: a.cost.String(),
		})
	}

	userIDs := make([]uint, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	names := make(map[uint]string, len(userIDs))
	users, err := s.repo.User.ListByIDs(ctx, userIDs)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}

	for _, id := range userIDs {
		a := byUser[id]
		resp.ByUser = append(resp.ByUser, dto.UserUsageRow{
			UserID: id, Username: names[id], Requests: a.requests, TotalTokens: a.tokens, TotalCost: a.cost.String(),
		})
	}
	sort.SliceStable(resp.ByUser, func(i, j int) bool {
		return resp.ByUser[i].TotalTokens > resp.ByUser[j].TotalTokens
	})

	return resp, nil
}
