package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"scout-assist/internal/dto"
	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// DownloadCSV 导出生成历史为 CSV（UTF-8 BOM）
// GET /api/admin/generation-history/download-csv
func (h *ExportHandler) DownloadCSV(c *gin.Context) {
	h.download(c, h.exportSvc.ExportHistoryCSV, contentTypeCSV)
}

// DownloadXLSX 导出生成历史为 Excel
// GET /api/admin/generation-history/download-xlsx
func (h *ExportHandler) DownloadXLSX(c *gin.Context) {
	h.download(c, h.exportSvc.ExportHistoryXLSX, contentTypeXLSX)
}

type exportFunc func(ctx context.Context, req *dto.HistoryListRequest) (*bytes.Buffer, string, error)

func (h *ExportHandler) download(c *gin.Context, export exportFunc, contentType string) {
	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "検索条件に誤りがあります")
		return
	}

	buf, filename, err := export(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"; filename*=UTF-8''`+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 50001, err.Error())
	default:
		response.InternalError(c)
	}
}
