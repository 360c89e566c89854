package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 安全 HTTP 头中间件
// API 只返回 JSON 与下载文件（CSV / XLSX），前端为独立部署的 SPA
//   - CSP 拒绝一切内嵌资源，禁止被嵌入 iframe
//   - 响应含个人信息（学生资料、生成文），禁止缓存
//   - CORP 限定同站读取，跨域访问只走 CORS 白名单
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-site")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Cache-Control", "no-store")

		c.Next()
	}
}
