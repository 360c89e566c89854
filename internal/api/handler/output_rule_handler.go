package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/dto"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// OutputRuleHandler 出力规则模块 HTTP 处理器
type OutputRuleHandler struct {
	ruleSvc service.OutputRuleService
}

// NewOutputRuleHandler 创建 OutputRuleHandler
func NewOutputRuleHandler(ruleSvc service.OutputRuleService) *OutputRuleHandler {
	return &OutputRuleHandler{ruleSvc: ruleSvc}
}

// ListOutputRules 出力规则列表（普通用户仅见所属团队分配的启用规则）
// GET /api/output-rules
func (h *OutputRuleHandler) ListOutputRules(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.ruleSvc.List(c.Request.Context(), pr)
	if err != nil {
		h.handleOutputRuleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetOutputRule 出力规则详情
// GET /api/output-rules/:id
func (h *OutputRuleHandler) GetOutputRule(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	rule, err := h.ruleSvc.GetByID(c.Request.Context(), id, pr)
	if err != nil {
		h.handleOutputRuleError(c, err)
		return
	}

	response.OK(c, rule)
}

// CreateOutputRule 创建出力规则
// POST /api/output-rules
func (h *OutputRuleHandler) CreateOutputRule(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateOutputRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rule, err := h.ruleSvc.Create(c.Request.Context(), &req, pr)
	if err != nil {
		h.handleOutputRuleError(c, err)
		return
	}

	response.Created(c, rule)
}

// UpdateOutputRule 更新出力规则
// PUT /api/output-rules/:id
func (h *OutputRuleHandler) UpdateOutputRule(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOutputRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rule, err := h.ruleSvc.Update(c.Request.Context(), id, &req, pr)
	if err != nil {
		h.handleOutputRuleError(c, err)
		return
	}

	response.OK(c, rule)
}

// DeleteOutputRule 删除出力规则，引用该规则的模板置空
// DELETE /api/output-rules/:id
func (h *OutputRuleHandler) DeleteOutputRule(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ruleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleOutputRuleError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleOutputRuleError 统一处理出力规则模块业务错误
func (h *OutputRuleHandler) handleOutputRuleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOutputRuleNotFound):
		response.NotFound(c, 23001, err.Error())
	default:
		response.InternalError(c)
	}
}
