// Package pricing 按百万 token 费率计算 API 调用费用
package pricing

import (
	"github.com/shopspring/decimal"

	"scout-assist/config"
)

var million = decimal.NewFromInt(1_000_000)

// Rates 费率表（美元 / 百万 token）
type Rates struct {
	InputPerMillion  decimal.Decimal
	OutputPerMillion decimal.Decimal
}

// NewRates 由配置构建费率表
func NewRates(cfg config.PricingConfig) Rates {
	return Rates{
		InputPerMillion:  decimal.NewFromFloat(cfg.InputPerMillion),
		OutputPerMillion: decimal.NewFromFloat(cfg.OutputPerMillion),
	}
}

// Cost 计算费用，十进制精确运算
func (r Rates) Cost(inputTokens, outputTokens int64) decimal.Decimal {
	in := decimal.NewFromInt(inputTokens).Mul(r.InputPerMillion).Div(million)
	out := decimal.NewFromInt(outputTokens).Mul(r.OutputPerMillion).Div(million)
	return in.Add(out)
}
