package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/authz"
)

// ActivityRecorder 操作日志写入方（审计服务实现，写入失败自行吞掉）
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, pr authz.Principal, action string, detail map[string]interface{})
}

// activityBodyMax 记录到日志中的请求体上限
const activityBodyMax = 8 << 10

var redactedFields = map[string]bool{
	"password":         true,
	"current_password": true,
	"new_password":     true,
}

// Activity 操作留痕中间件，须在 JWTAuth 之后使用
// 仅记录成功（<400）的请求；请求体中的密码字段替换为 "***"
func Activity(recorder ActivityRecorder, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil && c.Request.ContentLength > 0 && c.Request.ContentLength <= activityBodyMax {
			raw, err := io.ReadAll(c.Request.Body)
			if err == nil {
				body = raw
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}
		v, _ := c.Get(PrincipalKey)
		pr, ok := v.(authz.Principal)
		if !ok {
			return
		}

		detail := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
			detail["params"] = params
		}
		if payload := redactBody(body); payload != nil {
			detail["body"] = payload
		}

		recorder.RecordActivity(context.WithoutCancel(c.Request.Context()), pr, action, detail)
	}
}

// redactBody 解析 JSON 请求体并遮蔽敏感字段；非 JSON 时返回 nil
func redactBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return redactValue(payload)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if redactedFields[k] {
				t[k] = "***"
				continue
			}
			t[k] = redactValue(val)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	default:
		return v
	}
}
