package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scout-assist/pkg/response"
)

// requestIDMaxLen 外部传入 X-Request-ID 的长度上限
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 沿用上游代理传入的 X-Request-ID；缺失、超长或含非法字符时生成 UUID
// 结果写入 gin.Context（错误响应与请求日志共用）并回写到响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(response.RequestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// GetRequestID 读取当前请求的追踪 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(response.RequestIDKey)
}

// validRequestID 只接受字母、数字与 - _ . :，避免换行等字符进入日志
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for _, r := range rid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return false
		}
	}
	return true
}
