package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/dto"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// TemplateHandler 模板模块 HTTP 处理器
type TemplateHandler struct {
	templateSvc service.TemplateService
}

// NewTemplateHandler 创建 TemplateHandler
func NewTemplateHandler(templateSvc service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateSvc: templateSvc}
}

// ListTemplates 当前主体可见的模板
// GET /api/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.templateSvc.List(c.Request.Context(), pr)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetTemplate 模板详情（不可见时视为不存在）
// GET /api/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	tpl, err := h.templateSvc.GetByID(c.Request.Context(), id, pr)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, tpl)
}

// CreateTemplate 创建模板
// POST /api/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	tpl, err := h.templateSvc.Create(c.Request.Context(), &req, pr)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.Created(c, tpl)
}

// UpdateTemplate 更新模板
// PUT /api/templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	tpl, err := h.templateSvc.Update(c.Request.Context(), id, &req, pr)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, tpl)
}

// DeleteTemplate 删除模板
// DELETE /api/templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateSvc.Delete(c.Request.Context(), id, pr); err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, nil)
}

// DuplicateTemplate 复制模板
// POST /api/templates/:id/duplicate
func (h *TemplateHandler) DuplicateTemplate(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.DuplicateTemplateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	tpl, err := h.templateSvc.Duplicate(c.Request.Context(), id, &req, pr)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.Created(c, tpl)
}

// ListTemplateUsers 模板已分配的用户
// GET /api/templates/:id/users
func (h *TemplateHandler) ListTemplateUsers(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	users, err := h.templateSvc.ListUsers(c.Request.Context(), id)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, gin.H{"list": users})
}

// AssignTemplateUsers 整体替换模板分配用户
// PUT /api/templates/:id/assign-users
func (h *TemplateHandler) AssignTemplateUsers(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	users, err := h.templateSvc.AssignUsers(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	response.OK(c, gin.H{"list": users})
}

// handleTemplateError 统一处理模板模块业务错误
func (h *TemplateHandler) handleTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 24001, err.Error())
	case errors.Is(err, service.ErrTemplateNameExists):
		response.Conflict(c, 24002, err.Error())
	case errors.Is(err, service.ErrTemplateForbidden):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, service.ErrJobTypeNotFound):
		response.NotFound(c, 22001, err.Error())
	case errors.Is(err, service.ErrOutputRuleNotFound):
		response.NotFound(c, 23001, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 21001, err.Error())
	default:
		response.InternalError(c)
	}
}
