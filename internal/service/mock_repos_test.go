package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SegflowJP/line-bot/internal/model"
	"github.com/SegflowJP/line-bot/internal/progress"
	"github.com/SegflowJP/line-bot/internal/repository"
	pkgerrors "github.com/SegflowJP/line-bot/pkg/errors"
)

// ── Mock AccountRepository ──

type mockAccountRepo struct {
	accounts map[int64]*model.Account
	nextID   int64
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[int64]*model.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, a *model.Account) error {
	m.nextID++
	a.ID = m.nextID
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id int64) (*model.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	for _, a := range m.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) UpdateLastSignedIn(_ context.Context, id int64, at time.Time) error {
	if a, ok := m.accounts[id]; ok {
		a.LastSignedIn = &at
	}
	return nil
}

func (m *mockAccountRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.accounts)), nil
}

// ── Mock WorkerRepository ──

type mockWorkerRepo struct {
	workers     map[int64]*model.Worker
	nextID      int64
	unavailable bool
	calls       int
}

func newMockWorkerRepo() *mockWorkerRepo {
	return &mockWorkerRepo{workers: make(map[int64]*model.Worker)}
}

func (m *mockWorkerRepo) touch() error {
	m.calls++
	if m.unavailable {
		return pkgerrors.ErrStorageUnavailable
	}
	return nil
}

func (m *mockWorkerRepo) Create(_ context.Context, w *model.Worker) error {
	if err := m.touch(); err != nil {
		return err
	}
	m.nextID++
	w.ID = m.nextID
	cp := *w
	m.workers[w.ID] = &cp
	return nil
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id int64) (*model.Worker, error) {
	if err := m.touch(); err != nil {
		return nil, err
	}
	if w, ok := m.workers[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) GetActiveByLineUserID(_ context.Context, lineUserID string) (*model.Worker, error) {
	if err := m.touch(); err != nil {
		return nil, err
	}
	for _, w := range m.workers {
		if w.IsActive && w.LineUserID != nil && *w.LineUserID == lineUserID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) List(_ context.Context, activeOnly bool) ([]model.Worker, error) {
	if err := m.touch(); err != nil {
		return nil, err
	}
	var result []model.Worker
	for _, w := range m.workers {
		if activeOnly && !w.IsActive {
			continue
		}
		result = append(result, *w)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockWorkerRepo) Update(_ context.Context, id int64, fields map[string]interface{}) (int64, error) {
	if err := m.touch(); err != nil {
		return 0, err
	}
	w, ok := m.workers[id]
	if !ok {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			w.Name = v.(string)
		case "line_user_id":
			w.LineUserID = v.(*string)
		case "language":
			w.Language = v.(string)
		case "is_active":
			w.IsActive = v.(bool)
		}
	}
	return 1, nil
}

func (m *mockWorkerRepo) Deactivate(ctx context.Context, id int64) (int64, error) {
	return m.Update(ctx, id, map[string]interface{}{"is_active": false})
}

// ── Mock ProgressRepository ──

type progressKey struct {
	workerID int64
	date     string
}

type mockProgressRepo struct {
	mu          sync.Mutex
	records     map[progressKey]*model.DailyProgress
	nextID      int64
	unavailable bool
	calls       int
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{records: make(map[progressKey]*model.DailyProgress)}
}

func (m *mockProgressRepo) touch() error {
	m.calls++
	if m.unavailable {
		return pkgerrors.ErrStorageUnavailable
	}
	return nil
}

func (m *mockProgressRepo) ListByDate(_ context.Context, date string) ([]model.DailyProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	var result []model.DailyProgress
	for k, r := range m.records {
		if k.date == date {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockProgressRepo) ListByRange(_ context.Context, start, end string) ([]model.DailyProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	var result []model.DailyProgress
	for k, r := range m.records {
		if k.date >= start && k.date <= end {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].WorkerID < result[j].WorkerID
	})
	return result, nil
}

func (m *mockProgressRepo) Upsert(_ context.Context, workerID int64, date string, step progress.Step, ts int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return 0, err
	}
	key := progressKey{workerID, date}
	rec, ok := m.records[key]
	if !ok {
		m.nextID++
		rec = &model.DailyProgress{ID: m.nextID, WorkerID: workerID, Date: date}
		m.records[key] = rec
	}
	progress.Apply(rec, step, ts)
	return rec.ID, nil
}

// ── 测试装配 ──

type testRepos struct {
	account  *mockAccountRepo
	worker   *mockWorkerRepo
	progress *mockProgressRepo
	repo     *repository.Repository
}

func newTestRepos() *testRepos {
	r := &testRepos{
		account:  newMockAccountRepo(),
		worker:   newMockWorkerRepo(),
		progress: newMockProgressRepo(),
	}
	r.repo = &repository.Repository{
		Account:  r.account,
		Worker:   r.worker,
		Progress: r.progress,
	}
	return r
}

// storageCalls 所有 mock 仓储被调用的总次数
func (r *testRepos) storageCalls() int {
	return r.worker.calls + r.progress.calls
}

func (r *testRepos) setUnavailable(v bool) {
	r.worker.unavailable = v
	r.progress.unavailable = v
}
