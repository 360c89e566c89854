package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"scout-assist/internal/dto"
	"scout-assist/internal/model"
	"scout-assist/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("エクスポートファイルの生成に失敗しました")

const (
	exportBatchSize = 500
	historySheet    = "生成履歴"
	utf8BOM         = "\xEF\xBB\xBF"
)

var (
	historyHeader = []string{"ID", "ユーザー名", "テンプレート名", "職種", "業種", "学生プロフィール", "生成コメント", "作成日時"}
	jst           = time.FixedZone("JST", 9*60*60)
)

// ExportService 生成历史导出（管理员，全量）
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写出
type ExportService interface {
	ExportHistoryCSV(ctx context.Context, req *dto.HistoryListRequest) (*bytes.Buffer, string, error)
	ExportHistoryXLSX(ctx context.Context, req *dto.HistoryListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── CSV ──────────────────────

// ExportHistoryCSV UTF-8 BOM + RFC4180 引号转义，行尾 LF
func (s *exportService) ExportHistoryCSV(ctx context.Context, req *dto.HistoryListRequest) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(buf)
	if err := w.Write(historyHeader); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	err := s.repo.History.Each(ctx, exportFilter(req), exportBatchSize, func(rows []model.GenerationHistory) error {
		for i := range rows {
			if err := w.Write(historyRecord(&rows[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("导出生成历史 CSV 失败", zap.Error(err))
		return nil, "", err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Error("写入 CSV 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, s.filename("csv"), nil
}

// ────────────────────── XLSX ──────────────────────

func (s *exportService) ExportHistoryXLSX(ctx context.Context, req *dto.HistoryListRequest) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(historySheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	widths := []float64{8, 16, 24, 16, 16, 48, 64, 20}
	for i, wdt := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(historySheet, col, col, wdt)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		return nil, "", ErrExportGenerateFail
	}
	lastCol, _ := excelize.ColumnNumberToName(len(historyHeader))
	_ = f.SetCellStyle(historySheet, "A1", lastCol+"1", headerStyle)

	row := 2
	err = s.repo.History.Each(ctx, exportFilter(req), exportBatchSize, func(rows []model.GenerationHistory) error {
		for i := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			rec := historyRecord(&rows[i])
			values := make([]interface{}, len(rec))
			values[0] = rows[i].ID
			for j := 1; j < len(rec); j++ {
				values[j] = rec[j]
			}
			if err := f.SetSheetRow(historySheet, cell, &values); err != nil {
				return err
			}
			row++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("导出生成历史 XLSX 失败", zap.Error(err))
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, s.filename("xlsx"), nil
}

// ── 内部辅助 ──

func exportFilter(req *dto.HistoryListRequest) repository.HistoryFilter {
	filter := repository.HistoryFilter{Scope: repository.GlobalScope()}
	if req != nil {
		filter.UserID = req.UserID
		filter.Keyword = req.Keyword
		filter.From = req.From
		filter.To = req.To
	}
	return filter
}

func historyRecord(h *model.GenerationHistory) []string {
	return []string{
		strconv.FormatUint(uint64(h.ID), 10),
		h.Username,
		h.TemplateName,
		h.JobType,
		h.Industry,
		h.StudentProfile,
		h.GeneratedComment,
		h.CreatedAt.In(jst).Format("2006/01/02 15:04:05"),
	}
}

func (s *exportService) filename(ext string) string {
	return fmt.Sprintf("generation_history_%s.%s", s.now().In(jst).Format("20060102"), ext)
}
