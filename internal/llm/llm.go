// Package llm 文本生成网关
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request 一次生成调用的输入
type Request struct {
	System    string
	User      string
	Model     string
	MaxTokens int64
}

// Usage 供应方返回的 token 计数
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Total 输入与输出之和
func (u Usage) Total() int64 { return u.InputTokens + u.OutputTokens }

// Result 生成结果
// 供应方返回非文本内容时 Text 为空字符串
type Result struct {
	Text  string
	Model string
	Usage Usage
}

// Generator 生成网关接口，每次调用只请求一次供应方，不做重试
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Category 供应方错误分类
type Category string

const (
	CategoryOverloaded  Category = "overloaded"
	CategoryRateLimited Category = "rate_limited"
	CategoryServerError Category = "server_error"
	CategoryFailed      Category = "failed"
)

// ProviderError 供应方错误，保留原始 HTTP 状态码
type ProviderError struct {
	Category Category
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("llm %s (status %d)", e.Category, e.Status)
	}
	return fmt.Sprintf("llm %s (status %d): %v", e.Category, e.Status, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is 按分类匹配，errors.Is(err, ErrOverloaded) 与状态码无关
func (e *ProviderError) Is(target error) bool {
	var t *ProviderError
	if !errors.As(target, &t) {
		return false
	}
	return t.Category == e.Category
}

// 分类哨兵
var (
	ErrOverloaded  = &ProviderError{Category: CategoryOverloaded}
	ErrRateLimited = &ProviderError{Category: CategoryRateLimited}
	ErrServerError = &ProviderError{Category: CategoryServerError}
	ErrFailed      = &ProviderError{Category: CategoryFailed}
)

// Classify 将供应方 HTTP 状态码映射为错误分类
func Classify(status int) Category {
	switch {
	case status == 529:
		return CategoryOverloaded
	case status == 429:
		return CategoryRateLimited
	case status >= 500:
		return CategoryServerError
	default:
		return CategoryFailed
	}
}
