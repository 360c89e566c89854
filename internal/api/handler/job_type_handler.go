package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/dto"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// JobTypeHandler 职种模块 HTTP 处理器
type JobTypeHandler struct {
	jobTypeSvc service.JobTypeService
}

// NewJobTypeHandler 创建 JobTypeHandler
func NewJobTypeHandler(jobTypeSvc service.JobTypeService) *JobTypeHandler {
	return &JobTypeHandler{jobTypeSvc: jobTypeSvc}
}

// ListJobTypes 职种列表（按创建顺序）
// GET /api/job-types
func (h *JobTypeHandler) ListJobTypes(c *gin.Context) {
	list, err := h.jobTypeSvc.List(c.Request.Context())
	if err != nil {
		h.handleJobTypeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetJobType 职种详情
// GET /api/job-types/:id
func (h *JobTypeHandler) GetJobType(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	jt, err := h.jobTypeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleJobTypeError(c, err)
		return
	}

	response.OK(c, jt)
}

// CreateJobType 创建职种
// POST /api/job-types
func (h *JobTypeHandler) CreateJobType(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.JobTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	jt, err := h.jobTypeSvc.Create(c.Request.Context(), &req, pr)
	if err != nil {
		h.handleJobTypeError(c, err)
		return
	}

	response.Created(c, jt)
}

// UpdateJobType 更新职种
// PUT /api/job-types/:id
func (h *JobTypeHandler) UpdateJobType(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.JobTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	jt, err := h.jobTypeSvc.Update(c.Request.Context(), id, &req, pr)
	if err != nil {
		h.handleJobTypeError(c, err)
		return
	}

	response.OK(c, jt)
}

// DeleteJobType 删除职种
// DELETE /api/job-types/:id
func (h *JobTypeHandler) DeleteJobType(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobTypeSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleJobTypeError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleJobTypeError 统一处理职种模块业务错误
func (h *JobTypeHandler) handleJobTypeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobTypeNotFound):
		response.NotFound(c, 22001, err.Error())
	case errors.Is(err, service.ErrJobTypeNameExists):
		response.Conflict(c, 22002, err.Error())
	case errors.Is(err, service.ErrJobTypeInUse):
		response.Conflict(c, 22003, err.Error())
	default:
		response.InternalError(c)
	}
}
