package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/dto"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req, loginMeta(c))
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出，将当前 token 加入黑名单
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// Me 获取当前用户信息
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	me, err := h.authSvc.Me(c.Request.Context(), pr)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, me)
}

// UpdateMe 修改本人用户名 / 密码
// PUT /api/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.authSvc.UpdateMe(c.Request.Context(), pr, &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, err.Error())
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrTokenRevoked):
		response.Unauthorized(c, 10002, err.Error())
	case errors.Is(err, service.ErrCurrentPasswordRequired):
		response.BadRequest(c, 41001, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 41002, err.Error())
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, 21002, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 21001, err.Error())
	default:
		response.InternalError(c)
	}
}
