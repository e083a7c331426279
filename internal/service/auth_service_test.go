package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SegflowJP/line-bot/config"
	"github.com/SegflowJP/line-bot/internal/dto"
	"github.com/SegflowJP/line-bot/internal/model"
	"github.com/SegflowJP/line-bot/pkg/jwt"
)

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── 测试辅助 ──

func setupTestAuthService(boot config.BootstrapConfig) (AuthService, *testRepos, *jwt.Manager, *mockBlacklist) {
	repos := newTestRepos()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			BootstrapAdmin:  boot,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	bl := newMockBlacklist()
	return NewAuthService(cfg, repos.repo, jwtMgr, bl, zap.NewNop()), repos, jwtMgr, bl
}

func seedAccount(t *testing.T, repos *testRepos, username, password string) *model.Account {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	acc := &model.Account{Username: username, PasswordHash: string(hash), Name: "Manager", Role: model.RoleAdmin}
	_ = repos.account.Create(context.Background(), acc)
	return acc
}

// ── Login ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, repos, jwtMgr, _ := setupTestAuthService(config.BootstrapConfig{})
	acc := seedAccount(t, repos, "manager", "password123")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "manager", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Token 不应为空")
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际 %d", resp.ExpiresIn)
	}
	if resp.Account.ID != acc.ID || resp.Account.LastSignedIn == nil {
		t.Errorf("账号信息不符: %+v", resp.Account)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil || claims.AccountID != acc.ID {
		t.Errorf("AccessToken 应包含账号 ID, err=%v", err)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService(config.BootstrapConfig{})
	seedAccount(t, repos, "manager", "password123")

	for _, req := range []dto.LoginRequest{
		{Username: "manager", Password: "wrong"},
		{Username: "nobody", Password: "password123"},
	} {
		if _, err := svc.Login(context.Background(), &req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s 期望 ErrInvalidCredentials，实际 %v", req.Username, err)
		}
	}
}

// ── Refresh / Logout ──

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, repos, jwtMgr, bl := setupTestAuthService(config.BootstrapConfig{})
	seedAccount(t, repos, "manager", "password123")
	ctx := context.Background()

	login, _ := svc.Login(ctx, &dto.LoginRequest{Username: "manager", Password: "password123"})

	// Access Token 不能用于刷新
	if _, err := svc.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望 ErrInvalidToken，实际 %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh 失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("刷新后应返回新的 AccessToken")
	}

	old, _ := jwtMgr.ParseToken(login.RefreshToken)
	if _, ok := bl.revoked[old.ID]; !ok {
		t.Error("旧 RefreshToken 应被加入黑名单")
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("旧 RefreshToken 再次使用应失败，实际 %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, repos, jwtMgr, bl := setupTestAuthService(config.BootstrapConfig{})
	seedAccount(t, repos, "manager", "password123")
	ctx := context.Background()

	login, _ := svc.Login(ctx, &dto.LoginRequest{Username: "manager", Password: "password123"})
	claims, _ := jwtMgr.ParseToken(login.AccessToken)

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}
	ttl, ok := bl.revoked[claims.ID]
	if !ok {
		t.Fatal("登出后 jti 应在黑名单中")
	}
	if ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际 %v", ttl)
	}

	if err := svc.Logout(ctx, nil); err != nil {
		t.Errorf("匿名登出不应报错: %v", err)
	}
}

// ── Me ──

func TestAuthService_Me(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService(config.BootstrapConfig{})
	acc := seedAccount(t, repos, "manager", "password123")

	me, err := svc.Me(context.Background(), acc.ID)
	if err != nil || me.Username != "manager" {
		t.Errorf("Me 返回不符: %+v err=%v", me, err)
	}
	if _, err := svc.Me(context.Background(), 999); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("期望 ErrAccountNotFound，实际 %v", err)
	}
}

// ── EnsureBootstrapAdmin ──

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService(config.BootstrapConfig{Username: "admin", Password: "bootstrap-pass"})
	ctx := context.Background()

	if err := svc.EnsureBootstrapAdmin(ctx); err != nil {
		t.Fatalf("EnsureBootstrapAdmin 失败: %v", err)
	}
	if len(repos.account.accounts) != 1 {
		t.Fatalf("期望创建 1 个账号，实际 %d", len(repos.account.accounts))
	}
	acc, _ := repos.account.GetByUsername(ctx, "admin")
	if acc.Role != model.RoleAdmin || acc.Name != "admin" {
		t.Errorf("初始管理员字段不符: %+v", acc)
	}

	// 已有账号时不重复创建
	if err := svc.EnsureBootstrapAdmin(ctx); err != nil {
		t.Fatalf("EnsureBootstrapAdmin 失败: %v", err)
	}
	if len(repos.account.accounts) != 1 {
		t.Errorf("不应重复创建，实际 %d", len(repos.account.accounts))
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "bootstrap-pass"}); err != nil {
		t.Errorf("初始管理员应能登录: %v", err)
	}
}
