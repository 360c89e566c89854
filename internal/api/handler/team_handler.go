package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/dto"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// TeamHandler 团队模块 HTTP 处理器（管理员）
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// ListTeams 团队列表
// GET /api/admin/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	list, err := h.teamSvc.List(c.Request.Context())
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetTeam 团队详情（成员 + 分配的模板 / 出力规则）
// GET /api/admin/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	team, err := h.teamSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// CreateTeam 创建团队
// POST /api/admin/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.Create(c.Request.Context(), &req, pr)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// UpdateTeam 更新团队
// PUT /api/admin/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.Update(c.Request.Context(), id, &req, pr)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// DeleteTeam 删除团队
// DELETE /api/admin/teams/:id
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.teamSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddMember 添加成员
// POST /api/admin/teams/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.AddMember(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// UpdateMember 切换成员的管理者标记
// PUT /api/admin/teams/:id/members/:userId
func (h *TeamHandler) UpdateMember(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := MustGetIDParam(c, "userId")
	if !ok {
		return
	}

	var req dto.UpdateTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.UpdateMember(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// RemoveMember 移除成员
// DELETE /api/admin/teams/:id/members/:userId
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := MustGetIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.teamSvc.RemoveMember(c.Request.Context(), id, userID); err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, nil)
}

// AssignTemplates 整体替换团队模板
// PUT /api/admin/teams/:id/templates
func (h *TeamHandler) AssignTemplates(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TeamAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.AssignTemplates(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// AssignOutputRules 整体替换团队出力规则
// PUT /api/admin/teams/:id/output-rules
func (h *TeamHandler) AssignOutputRules(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TeamAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.AssignOutputRules(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// handleTeamError 统一处理团队模块业务错误
func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 25001, err.Error())
	case errors.Is(err, service.ErrTeamNameExists):
		response.Conflict(c, 25002, err.Error())
	case errors.Is(err, service.ErrTeamMemberExists):
		response.Conflict(c, 25003, err.Error())
	case errors.Is(err, service.ErrTeamMemberNotFound):
		response.NotFound(c, 25004, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 21001, err.Error())
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 24001, err.Error())
	case errors.Is(err, service.ErrOutputRuleNotFound):
		response.NotFound(c, 23001, err.Error())
	default:
		response.InternalError(c)
	}
}
