package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/authz"
	"scout-assist/pkg/jwt"
	"scout-assist/pkg/response"
)

// 上下文键
const (
	PrincipalKey = "principal"
	ClaimsKey    = "claims"
)

// Authenticator 由认证服务实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (authz.Principal, *jwt.Claims, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取 token，校验后按数据库当前状态解析主体
func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "認証ヘッダーがありません")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "認証ヘッダーの形式が正しくありません")
			c.Abort()
			return
		}

		pr, claims, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			msg := "トークンが無効です。再度ログインしてください"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "トークンの有効期限が切れています。再度ログインしてください"
			}
			response.Unauthorized(c, response.CodeUnauthenticated, msg)
			c.Abort()
			return
		}

		c.Set(PrincipalKey, pr)
		c.Set(ClaimsKey, claims)
		c.Set("user_id", pr.UserID)
		c.Set("username", pr.Username)
		c.Set("role", pr.Role)

		c.Next()
	}
}

// Require 能力校验中间件，须在 JWTAuth 之后使用
func Require(policy *authz.Policy, pred authz.Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(PrincipalKey)
		pr, ok := v.(authz.Principal)
		if !exists || !ok {
			response.Unauthorized(c, response.CodeUnauthenticated, response.MsgUnauthenticated)
			c.Abort()
			return
		}

		if !policy.Allows(pr, pred) {
			response.Forbidden(c, response.CodeForbidden, response.MsgForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
