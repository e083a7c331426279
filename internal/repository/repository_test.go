package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SegflowJP/line-bot/config"
	"github.com/SegflowJP/line-bot/internal/model"
	"github.com/SegflowJP/line-bot/internal/progress"
	"github.com/SegflowJP/line-bot/pkg/database"
	pkgerrors "github.com/SegflowJP/line-bot/pkg/errors"
)

// newTestRepo 基于临时 SQLite 文件创建 Repository（含迁移）
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn := database.New(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "repo.db"),
	}, "error", zap.NewNop())
	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewRepository(conn)
}

func strPtr(s string) *string { return &s }

// staticProvider 以固定句柄实现 Provider，nil 句柄视为存储不可用
type staticProvider struct {
	db *gorm.DB
}

func (s staticProvider) Get(context.Context) (*gorm.DB, error) {
	if s.db == nil {
		return nil, pkgerrors.ErrStorageUnavailable
	}
	return s.db, nil
}

// findRecord 按 (worker, date) 取出当日记录，不存在时返回 nil
func findRecord(t *testing.T, repo *Repository, workerID int64, date string) *model.DailyProgress {
	t.Helper()
	records, err := repo.Progress.ListByDate(context.Background(), date)
	if err != nil {
		t.Fatalf("ListByDate 失败: %v", err)
	}
	for i := range records {
		if records[i].WorkerID == workerID {
			return &records[i]
		}
	}
	return nil
}

// ────────────────────── Worker ──────────────────────

func TestWorkerRepo_CreateListOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Tanaka", "Abe", "Suzuki"} {
		w := &model.Worker{Name: name, Language: model.LanguageJA, IsActive: true}
		if err := repo.Worker.Create(ctx, w); err != nil {
			t.Fatalf("创建作业员失败: %v", err)
		}
		if w.ID == 0 {
			t.Fatal("创建后 ID 应被回填")
		}
	}
	inactive := &model.Worker{Name: "Ito", Language: model.LanguageEN, IsActive: false}
	if err := repo.Worker.Create(ctx, inactive); err != nil {
		t.Fatalf("创建作业员失败: %v", err)
	}

	active, err := repo.Worker.List(ctx, true)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	want := []string{"Abe", "Suzuki", "Tanaka"}
	if len(active) != len(want) {
		t.Fatalf("期望 %d 名在职作业员，实际 %d", len(want), len(active))
	}
	for i, w := range active {
		if w.Name != want[i] {
			t.Errorf("第 %d 位期望 %s，实际 %s", i, want[i], w.Name)
		}
	}

	all, err := repo.Worker.List(ctx, false)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("期望全部 4 名，实际 %d", len(all))
	}
	got, _ := repo.Worker.GetByID(ctx, inactive.ID)
	if got == nil || got.IsActive {
		t.Error("IsActive=false 的作业员应原样保存")
	}
}

func TestWorkerRepo_UpdateAndDeactivate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	w := &model.Worker{Name: "Sato", LineUserID: strPtr("U123"), Language: model.LanguageJA, IsActive: true}
	if err := repo.Worker.Create(ctx, w); err != nil {
		t.Fatalf("创建作业员失败: %v", err)
	}

	n, err := repo.Worker.Update(ctx, w.ID, map[string]interface{}{"language": model.LanguageEN})
	if err != nil || n != 1 {
		t.Fatalf("Update 期望影响 1 行，实际 n=%d err=%v", n, err)
	}
	got, _ := repo.Worker.GetByID(ctx, w.ID)
	if got.Language != model.LanguageEN || got.Name != "Sato" {
		t.Errorf("部分更新后字段不符: %+v", got)
	}

	byLine, err := repo.Worker.GetActiveByLineUserID(ctx, "U123")
	if err != nil || byLine.ID != w.ID {
		t.Fatalf("按 LINE ID 查找失败: %v", err)
	}

	if n, err := repo.Worker.Deactivate(ctx, w.ID); err != nil || n != 1 {
		t.Fatalf("Deactivate 期望影响 1 行，实际 n=%d err=%v", n, err)
	}
	got, err = repo.Worker.GetByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("软删除后记录应仍存在: %v", err)
	}
	if got.IsActive {
		t.Error("软删除后 IsActive 应为 false")
	}
	if _, err := repo.Worker.GetActiveByLineUserID(ctx, "U123"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("停用作业员不应被 LINE ID 匹配, err=%v", err)
	}

	// 不存在的 ID：影响 0 行且不报错
	if n, err := repo.Worker.Update(ctx, 9999, map[string]interface{}{"name": "X"}); err != nil || n != 0 {
		t.Errorf("不存在的 ID 期望 n=0 err=nil，实际 n=%d err=%v", n, err)
	}
	if n, err := repo.Worker.Deactivate(ctx, 9999); err != nil || n != 0 {
		t.Errorf("不存在的 ID 期望 n=0 err=nil，实际 n=%d err=%v", n, err)
	}
}

// ────────────────────── Progress ──────────────────────

func TestProgressRepo_UpsertMergesSteps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, err := repo.Progress.Upsert(ctx, 1, "2026-02-18", progress.StepWakeUp, 1000)
	if err != nil {
		t.Fatalf("首次 Upsert 失败: %v", err)
	}
	id2, err := repo.Progress.Upsert(ctx, 1, "2026-02-18", progress.StepArrived, 3000)
	if err != nil {
		t.Fatalf("第二次 Upsert 失败: %v", err)
	}
	if id1 != id2 {
		t.Errorf("同一 (worker, date) 应返回同一 ID，实际 %d / %d", id1, id2)
	}

	rec := findRecord(t, repo, 1, "2026-02-18")
	if rec == nil {
		t.Fatal("Upsert 后应存在记录")
	}
	if rec.WakeUpTime == nil || *rec.WakeUpTime != 1000 {
		t.Errorf("wake_up_time 应保持 1000，实际 %v", rec.WakeUpTime)
	}
	if rec.OnTheWayTime != nil {
		t.Errorf("on_the_way_time 应为空，实际 %v", *rec.OnTheWayTime)
	}
	if rec.ArrivedTime == nil || *rec.ArrivedTime != 3000 {
		t.Errorf("arrived_time 期望 3000，实际 %v", rec.ArrivedTime)
	}

	// 同一步骤再次上报：后写覆盖
	if _, err := repo.Progress.Upsert(ctx, 1, "2026-02-18", progress.StepWakeUp, 1500); err != nil {
		t.Fatalf("覆盖 Upsert 失败: %v", err)
	}
	rec = findRecord(t, repo, 1, "2026-02-18")
	if *rec.WakeUpTime != 1500 {
		t.Errorf("wake_up_time 期望被覆盖为 1500，实际 %d", *rec.WakeUpTime)
	}
	if *rec.ArrivedTime != 3000 {
		t.Errorf("arrived_time 不应受影响，实际 %d", *rec.ArrivedTime)
	}
}

func TestProgressRepo_UpsertRejectsUnknownStep(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Progress.Upsert(context.Background(), 1, "2026-02-18", progress.Step("sleep"), 1); !errors.Is(err, progress.ErrInvalidStep) {
		t.Errorf("期望 ErrInvalidStep，实际 %v", err)
	}
}

// 同一 (worker, date) 的两个不同步骤并发首次上报，最终只有一条记录且两个字段都在
//
// SQLite 连接池固定为单连接，这里的两个写入在池内排队执行，只验证结果合并；
// ON CONFLICT 分支真正并发竞争由 integration_test.go 的 PostgreSQL 用例覆盖。
func TestProgressRepo_ConcurrentFirstCheckins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const rounds = 20
	for round := 0; round < rounds; round++ {
		date := "2026-03-" + twoDigits(round+1)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for _, tc := range []struct {
			step progress.Step
			ts   int64
		}{
			{progress.StepWakeUp, 1000},
			{progress.StepOnTheWay, 2000},
		} {
			wg.Add(1)
			go func(step progress.Step, ts int64) {
				defer wg.Done()
				if _, err := repo.Progress.Upsert(ctx, 7, date, step, ts); err != nil {
					errs <- err
				}
			}(tc.step, tc.ts)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("并发 Upsert 失败: %v", err)
		}

		records, err := repo.Progress.ListByDate(ctx, date)
		if err != nil {
			t.Fatalf("ListByDate 失败: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("%s 期望 1 条记录，实际 %d", date, len(records))
		}
		rec := records[0]
		if rec.WakeUpTime == nil || *rec.WakeUpTime != 1000 {
			t.Errorf("%s wake_up_time 丢失: %v", date, rec.WakeUpTime)
		}
		if rec.OnTheWayTime == nil || *rec.OnTheWayTime != 2000 {
			t.Errorf("%s on_the_way_time 丢失: %v", date, rec.OnTheWayTime)
		}
	}
}

func TestProgressRepo_ListByRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []struct {
		worker int64
		date   string
	}{
		{2, "2026-02-16"},
		{1, "2026-02-17"},
		{2, "2026-02-17"},
		{1, "2026-02-18"},
		{1, "2026-02-19"},
	}
	for _, s := range seed {
		if _, err := repo.Progress.Upsert(ctx, s.worker, s.date, progress.StepWakeUp, 1); err != nil {
			t.Fatalf("写入测试数据失败: %v", err)
		}
	}

	records, err := repo.Progress.ListByRange(ctx, "2026-02-17", "2026-02-18")
	if err != nil {
		t.Fatalf("ListByRange 失败: %v", err)
	}
	want := []struct {
		worker int64
		date   string
	}{
		{1, "2026-02-18"},
		{1, "2026-02-17"},
		{2, "2026-02-17"},
	}
	if len(records) != len(want) {
		t.Fatalf("期望 %d 条，实际 %d", len(want), len(records))
	}
	for i, w := range want {
		if records[i].WorkerID != w.worker || records[i].Date != w.date {
			t.Errorf("第 %d 条期望 %d/%s，实际 %d/%s", i, w.worker, w.date, records[i].WorkerID, records[i].Date)
		}
	}

	empty, err := repo.Progress.ListByRange(ctx, "2026-02-19", "2026-02-16")
	if err != nil {
		t.Fatalf("ListByRange 失败: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("start > end 期望空结果，实际 %d 条", len(empty))
	}
}

// ────────────────────── Account ──────────────────────

func TestAccountRepo(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Account.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("初始账号数期望 0，实际 n=%d err=%v", n, err)
	}

	acc := &model.Account{Username: "manager", PasswordHash: "hash", Name: "Manager", Role: model.RoleAdmin}
	if err := repo.Account.Create(ctx, acc); err != nil {
		t.Fatalf("创建账号失败: %v", err)
	}
	got, err := repo.Account.GetByUsername(ctx, "manager")
	if err != nil || got.ID != acc.ID {
		t.Fatalf("GetByUsername 失败: %v", err)
	}
	if got.LastSignedIn != nil {
		t.Error("新账号 last_signed_in 应为空")
	}

	if err := repo.Account.UpdateLastSignedIn(ctx, acc.ID, got.CreatedAt); err != nil {
		t.Fatalf("UpdateLastSignedIn 失败: %v", err)
	}
	got, _ = repo.Account.GetByID(ctx, acc.ID)
	if got.LastSignedIn == nil {
		t.Error("last_signed_in 应已写入")
	}

	if _, err := repo.Account.GetByUsername(ctx, "nobody"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际 %v", err)
	}
}

func TestWorkerRepo_CreateKeepsInactiveFlag(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, active := range []bool{false, true} {
		w := &model.Worker{Name: "Mori", Language: model.LanguageJA, IsActive: active}
		if err := repo.Worker.Create(ctx, w); err != nil {
			t.Fatalf("创建作业员失败: %v", err)
		}
		got, err := repo.Worker.GetByID(ctx, w.ID)
		if err != nil {
			t.Fatalf("GetByID 失败: %v", err)
		}
		if got.IsActive != active {
			t.Errorf("创建时 IsActive=%v，落库后为 %v", active, got.IsActive)
		}
	}
}

// ────────────────────── Unavailable ──────────────────────

func TestRepository_StorageUnavailable(t *testing.T) {
	repo := NewRepository(staticProvider{})
	ctx := context.Background()

	if _, err := repo.Worker.List(ctx, true); !errors.Is(err, pkgerrors.ErrStorageUnavailable) {
		t.Errorf("List 期望 ErrStorageUnavailable，实际 %v", err)
	}
	if _, err := repo.Progress.ListByDate(ctx, "2026-02-18"); !errors.Is(err, pkgerrors.ErrStorageUnavailable) {
		t.Errorf("ListByDate 期望 ErrStorageUnavailable，实际 %v", err)
	}
	if _, err := repo.Progress.Upsert(ctx, 1, "2026-02-18", progress.StepWakeUp, 1); !errors.Is(err, pkgerrors.ErrStorageUnavailable) {
		t.Errorf("Upsert 期望 ErrStorageUnavailable，实际 %v", err)
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
