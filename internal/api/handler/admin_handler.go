package handler

import (
	"github.com/gin-gonic/gin"

	"scout-assist/internal/dto"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// AdminHandler 管理端查询（日志、生成历史、用量）
type AdminHandler struct {
	auditSvc   service.AuditService
	historySvc service.HistoryService
	usageSvc   service.UsageService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(auditSvc service.AuditService, historySvc service.HistoryService, usageSvc service.UsageService) *AdminHandler {
	return &AdminHandler{auditSvc: auditSvc, historySvc: historySvc, usageSvc: usageSvc}
}

// ListLoginLogs 登录日志
// GET /api/admin/login-logs
func (h *AdminHandler) ListLoginLogs(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.LogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "検索条件に誤りがあります")
		return
	}

	logs, total, err := h.auditSvc.ListLoginLogs(c.Request.Context(), &req, pr)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}

// ListActivityLogs 操作日志
// GET /api/admin/activity-logs
func (h *AdminHandler) ListActivityLogs(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.LogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "検索条件に誤りがあります")
		return
	}

	logs, total, err := h.auditSvc.ListActivityLogs(c.Request.Context(), &req, pr)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}

// ListGenerationHistory 全员生成历史（经理限所辖团队）
// GET /api/admin/generation-history
func (h *AdminHandler) ListGenerationHistory(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "検索条件に誤りがあります")
		return
	}

	list, total, err := h.historySvc.List(c.Request.Context(), &req, pr)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UsageStats 用量统计
// GET /api/admin/usage-stats
func (h *AdminHandler) UsageStats(c *gin.Context) {
	var req dto.UsageStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "検索条件に誤りがあります")
		return
	}

	stats, err := h.usageSvc.Stats(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}
