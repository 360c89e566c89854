// Package client 服务端 REST API 的 Go 客户端（供 scoutctl 使用）
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scout-assist/internal/dto"
	"scout-assist/pkg/response"
)

// APIError 服务端返回的错误响应
// RequestID 为服务端分配的追踪 ID，报告问题时附上
type APIError struct {
	Status    int
	Code      int
	Message   string
	Details   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d/%d: %s", e.Status, e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.RequestID != "" {
		msg += " [request_id=" + e.RequestID + "]"
	}
	return msg
}

// IsAuth 认证失效或无权限（客户端应清除会话）
func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Client API 客户端
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New 创建客户端，baseURL 形如 http://localhost:3001
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken 设置 Bearer token
func (c *Client) SetToken(token string) {
	c.token = token
}

// ── 认证 ──

// Login 登录并保存 token
func (c *Client) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	var out dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Logout 注销当前 token
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me 当前用户
func (c *Client) Me(ctx context.Context) (*dto.MeResponse, error) {
	var out dto.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── 主数据 ──

type listData[T any] struct {
	List []T `json:"list"`
}

// JobTypes 职种列表
func (c *Client) JobTypes(ctx context.Context) ([]dto.JobTypeResponse, error) {
	var out listData[dto.JobTypeResponse]
	err := c.do(ctx, http.MethodGet, "/api/job-types", nil, &out)
	return out.List, err
}

// OutputRules 可用的出力规则
func (c *Client) OutputRules(ctx context.Context) ([]dto.OutputRuleResponse, error) {
	var out listData[dto.OutputRuleResponse]
	err := c.do(ctx, http.MethodGet, "/api/output-rules", nil, &out)
	return out.List, err
}

// Templates 可见的模板
func (c *Client) Templates(ctx context.Context) ([]dto.TemplateResponse, error) {
	var out listData[dto.TemplateResponse]
	err := c.do(ctx, http.MethodGet, "/api/templates", nil, &out)
	return out.List, err
}

// ── 生成 ──

// Generate 生成スカウト文
func (c *Client) Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	var out dto.GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyHistory 本人生成历史（分页）
func (c *Client) MyHistory(ctx context.Context, page, pageSize int) ([]dto.HistoryResponse, response.Pagination, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var out struct {
		List       []dto.HistoryResponse `json:"list"`
		Pagination response.Pagination   `json:"pagination"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/my-generation-history?"+q.Encode(), nil, &out); err != nil {
		return nil, response.Pagination{}, err
	}
	return out.List, out.Pagination, nil
}

// DownloadHistory 导出生成历史（format 为 csv 或 xlsx），返回服务端建议的文件名
func (c *Client) DownloadHistory(ctx context.Context, format string, w io.Writer) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/admin/generation-history/download-"+format, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", err
	}

	filename := "generation_history." + format
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return filename, nil
}

// ── 内部 ──

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do 发送请求并将统一响应中的 data 解码到 out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body response.Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.Details = body.Details
		apiErr.RequestID = body.RequestID
	}
	if apiErr.RequestID == "" {
		apiErr.RequestID = resp.Header.Get("X-Request-ID")
	}
	return apiErr
}
