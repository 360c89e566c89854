package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/api/middleware"
	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/pkg/jwt"
	"scout-assist/pkg/response"
)

// MustGetPrincipal 从 Gin 上下文中安全提取当前主体。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetPrincipal(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get(middleware.PrincipalKey)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, response.MsgUnauthenticated)
		return authz.Principal{}, false
	}
	pr, ok := v.(authz.Principal)
	if !ok || pr.UserID == 0 {
		response.Unauthorized(c, response.CodeUnauthenticated, response.MsgUnauthenticated)
		return authz.Principal{}, false
	}
	return pr, true
}

// MustGetClaims 从 Gin 上下文中安全提取 token 声明（登出时使用）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.ClaimsKey)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, response.MsgUnauthenticated)
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, response.CodeUnauthenticated, response.MsgUnauthenticated)
		return nil, false
	}
	return claims, true
}

// MustGetIDParam 解析路径中的数字 ID，非法时写入 400 响应
func MustGetIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, response.CodeValidation, response.MsgInvalidID)
		return 0, false
	}
	return uint(id), true
}

// bindFailed 绑定失败时区分请求体超限与参数错误
func bindFailed(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.PayloadTooLarge(c)
		return
	}
	response.BadRequest(c, response.CodeValidation, "入力内容に誤りがあります")
}

func loginMeta(c *gin.Context) dto.LoginMeta {
	return dto.LoginMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
