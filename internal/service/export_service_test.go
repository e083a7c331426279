package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SegflowJP/line-bot/internal/dto"
	pkgerrors "github.com/SegflowJP/line-bot/pkg/errors"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, ProgressService, WorkerService, *testRepos) {
	ps, ws, repos := setupTestProgressService(false)
	return NewExportService(repos.repo, zap.NewNop()), ps, ws, repos
}

// ── ExportHistory 测试 ──

func TestExportService_ExportHistory_InvalidDate(t *testing.T) {
	svc, _, _, _ := setupTestExportService()

	_, _, err := svc.ExportHistory(context.Background(), "2026/02/01", "2026-02-18")
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

func TestExportService_ExportHistory_Empty(t *testing.T) {
	svc, _, _, _ := setupTestExportService()

	_, _, err := svc.ExportHistory(context.Background(), "2026-02-01", "2026-02-18")
	if !errors.Is(err, ErrExportRangeEmpty) {
		t.Errorf("期望 ErrExportRangeEmpty，实际: %v", err)
	}
}

func TestExportService_ExportHistory_Unavailable(t *testing.T) {
	svc, _, _, repos := setupTestExportService()
	repos.setUnavailable(true)

	_, _, err := svc.ExportHistory(context.Background(), "2026-02-01", "2026-02-18")
	if !errors.Is(err, pkgerrors.ErrStorageUnavailable) {
		t.Errorf("期望 ErrStorageUnavailable，实际: %v", err)
	}
}

func TestExportService_ExportHistory_Success(t *testing.T) {
	svc, ps, ws, _ := setupTestExportService()
	ctx := context.Background()

	resp, _ := ws.Create(ctx, &dto.CreateWorkerRequest{Name: "田中"})
	// 2026-02-18 05:30 / 07:10 (UTC+9)
	checkin(t, ps, resp.ID, "2026-02-18", "wakeUp", 1771360200000)
	checkin(t, ps, resp.ID, "2026-02-18", "arrived", 1771366200000)
	checkin(t, ps, 77, "2026-02-17", "onTheWay", 1771280000000)

	buf, filename, err := svc.ExportHistory(ctx, "2026-02-01", "2026-02-18")
	if err != nil {
		t.Fatalf("ExportHistory 失败: %v", err)
	}
	if filename != "progress_2026-02-01_2026-02-18.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("无法读取生成的 Excel: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("履歴")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	// 标题 + 表头 + 2 条记录
	if len(rows) != 4 {
		t.Fatalf("期望 4 行，实际 %d", len(rows))
	}
	if rows[1][0] != "日付" {
		t.Errorf("表头首列期望 日付，实际 %s", rows[1][0])
	}

	first := rows[2]
	if first[0] != "2026-02-18" || first[1] != "田中" {
		t.Errorf("首条记录应为 2026-02-18 田中，实际 %v", first)
	}
	if first[2] != "05:30" || first[3] != "—" || first[4] != "07:10" {
		t.Errorf("时间列不符: %v", first[2:5])
	}
	if first[5] != "到着済み" || first[6] != "100%" {
		t.Errorf("状态列不符: %v", first[5:])
	}

	second := rows[3]
	if second[1] != "#77" || second[5] != "移動中" || second[6] != "66%" {
		t.Errorf("未登记作业员记录不符: %v", second)
	}
}
