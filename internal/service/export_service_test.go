package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"scout-assist/internal/dto"
	"scout-assist/internal/model"
)

func setupTestExportService() (*exportService, *mockRepos) {
	repos := newMockRepos()
	svc := NewExportService(repos.repository, zap.NewNop()).(*exportService)
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC) }
	return svc, repos
}

func seedHistory(repos *mockRepos, n int) {
	for i := 0; i < n; i++ {
		_ = repos.history.Create(context.Background(), &model.GenerationHistory{
			UserID:           1,
			Username:         "tanaka",
			TemplateName:     "Acme_Sales",
			JobType:          "営業",
			Industry:         "IT",
			StudentProfile:   "プロフィール",
			GeneratedComment: "コメント",
		})
	}
}

func TestExportService_CSV_LinesAndBOM(t *testing.T) {
	svc, repos := setupTestExportService()
	seedHistory(repos, 3)

	buf, filename, err := svc.ExportHistoryCSV(context.Background(), &dto.HistoryListRequest{})
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("CSV 应以 UTF-8 BOM 开头")
	}
	lines := strings.Split(strings.TrimSuffix(string(data[3:]), "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("期望 3 行数据 + 1 行表头 = 4 行，实际=%d", len(lines))
	}
	if lines[0] != "ID,ユーザー名,テンプレート名,職種,業種,学生プロフィール,生成コメント,作成日時" {
		t.Errorf("表头不正确: %s", lines[0])
	}
	if strings.Contains(string(data), "\r\n") {
		t.Error("行尾应为 LF")
	}
	if filename != "generation_history_20240702.csv" {
		t.Errorf("文件名应按 JST 日期生成，实际=%s", filename)
	}
}

func TestExportService_CSV_Quoting(t *testing.T) {
	svc, repos := setupTestExportService()
	_ = repos.history.Create(context.Background(), &model.GenerationHistory{
		UserID:           1,
		Username:         "tanaka",
		StudentProfile:   `部長, "リーダー"`,
		GeneratedComment: "一行目\n二行目",
	})

	buf, _, err := svc.ExportHistoryCSV(context.Background(), nil)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	raw := buf.String()
	if !strings.Contains(raw, `"部長, ""リーダー"""`) {
		t.Errorf("含逗号与引号的字段应加引号并双写内部引号: %s", raw)
	}
	if !strings.Contains(raw, "\"一行目\n二行目\"") {
		t.Errorf("含换行的字段应加引号: %s", raw)
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, "\xEF\xBB\xBF"))).ReadAll()
	if err != nil {
		t.Fatalf("CSV 应可被标准解析器读取: %v", err)
	}
	if len(records) != 2 || records[1][5] != `部長, "リーダー"` || records[1][6] != "一行目\n二行目" {
		t.Errorf("往返解析结果不正确: %+v", records)
	}
}

func TestExportService_CSV_Empty(t *testing.T) {
	svc, _ := setupTestExportService()

	buf, _, err := svc.ExportHistoryCSV(context.Background(), nil)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("无数据时只应有表头 1 行，实际=%d", got)
	}
}

func TestExportService_XLSX(t *testing.T) {
	svc, repos := setupTestExportService()
	seedHistory(repos, 2)

	buf, filename, err := svc.ExportHistoryXLSX(context.Background(), nil)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件扩展名应为 .xlsx，实际=%s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("读取 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("生成履歴")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("期望 1 行表头 + 2 行数据，实际=%d", len(rows))
	}
	if rows[0][1] != "ユーザー名" || rows[1][1] != "tanaka" {
		t.Errorf("内容不正确: %v", rows[:2])
	}
}
