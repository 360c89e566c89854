package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/api/middleware"
	"scout-assist/internal/dto"
	"scout-assist/internal/llm"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// GenerationHandler 生成模块 HTTP 处理器
type GenerationHandler struct {
	generationSvc service.GenerationService
}

// NewGenerationHandler 创建 GenerationHandler
func NewGenerationHandler(generationSvc service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationSvc: generationSvc}
}

// Generate 生成スカウト文
// POST /api/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			bindFailed(c, err)
			return
		}
		response.BadRequest(c, 10001, service.ErrGenerateInvalidInput.Error())
		return
	}

	result, err := h.generationSvc.Generate(c.Request.Context(), &req, pr)
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMyHistory 本人的生成历史
// GET /api/my-generation-history
func (h *GenerationHandler) ListMyHistory(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "検索条件に誤りがあります")
		return
	}

	list, total, err := h.generationSvc.ListMyHistory(c.Request.Context(), &req, pr)
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// DeleteMyHistory 删除本人的一条生成历史
// DELETE /api/my-generation-history/:id
func (h *GenerationHandler) DeleteMyHistory(c *gin.Context) {
	pr, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.generationSvc.DeleteMyHistory(c.Request.Context(), id, pr); err != nil {
		h.handleGenerationError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleGenerationError 统一处理生成模块业务错误
// 供应方错误按分类映射，details 携带原始状态码
func (h *GenerationHandler) handleGenerationError(c *gin.Context, err error) {
	var pe *llm.ProviderError
	switch {
	case errors.Is(err, service.ErrGenerateInvalidInput):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrJobTypeNotFound):
		response.NotFound(c, 22001, err.Error())
	case errors.Is(err, service.ErrOutputRuleNotFound):
		response.NotFound(c, 23001, err.Error())
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 24001, err.Error())
	case errors.Is(err, service.ErrHistoryNotFound):
		response.NotFound(c, 26001, err.Error())
	case errors.As(err, &pe):
		h.writeProviderError(c, pe)
	default:
		response.InternalError(c)
	}
}

func (h *GenerationHandler) writeProviderError(c *gin.Context, pe *llm.ProviderError) {
	details := strconv.Itoa(pe.Status)
	switch pe.Category {
	case llm.CategoryOverloaded:
		response.ErrorWithDetails(c, http.StatusServiceUnavailable, 50301,
			"AIサービスが混雑しています。しばらくしてから再度お試しください", details)
	case llm.CategoryRateLimited:
		response.ErrorWithDetails(c, http.StatusTooManyRequests, 50302,
			"AIサービスの利用制限に達しました。しばらくしてから再度お試しください", details)
	case llm.CategoryServerError:
		response.ErrorWithDetails(c, http.StatusBadGateway, 50303,
			"AIサービスでエラーが発生しました", details)
	default:
		response.ErrorWithDetails(c, http.StatusInternalServerError, 50300,
			"スカウト文の生成に失敗しました", details)
	}
}
