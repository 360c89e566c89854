package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"scout-assist/config"
)

// AnthropicGenerator 基于 Anthropic Messages API 的生成网关
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// NewAnthropicGenerator 创建生成网关，SDK 自带重试被关闭
func NewAnthropicGenerator(cfg *config.LLMConfig, logger *zap.Logger) *AnthropicGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// Generate 调用一次 Messages API
func (g *AnthropicGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	})
	if err != nil {
		perr := translateError(err)
		g.logger.Warn("生成服务调用失败",
			zap.String("category", string(perr.Category)),
			zap.Int("status", perr.Status),
			zap.Error(err),
		)
		return nil, perr
	}

	text := ""
	if len(msg.Content) > 0 && msg.Content[0].Type == "text" {
		text = msg.Content[0].Text
	}

	return &Result{
		Text:  text,
		Model: string(msg.Model),
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}

func translateError(err error) *ProviderError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Category: Classify(apiErr.StatusCode),
			Status:   apiErr.StatusCode,
			Err:      err,
		}
	}
	return &ProviderError{Category: CategoryFailed, Err: err}
}
