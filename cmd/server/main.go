package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"github.com/SegflowJP/line-bot/config"
	"github.com/SegflowJP/line-bot/internal/api/handler"
	"github.com/SegflowJP/line-bot/internal/api/router"
	"github.com/SegflowJP/line-bot/internal/repository"
	"github.com/SegflowJP/line-bot/internal/service"
	"github.com/SegflowJP/line-bot/pkg/database"
	"github.com/SegflowJP/line-bot/pkg/jwt"
	applogger "github.com/SegflowJP/line-bot/pkg/logger"
	"github.com/SegflowJP/line-bot/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库（失败时降级运行：读接口返回空结果，写接口返回 503）
	conn := database.New(&cfg.Database, cfg.Log.Level, logger)
	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := conn.Connect(startCtx); err != nil {
		logger.Warn("数据库连接失败，以降级模式启动", zap.Error(err))
	} else {
		logger.Info("数据库连接成功")
	}
	startCancel()

	// 4. 连接 Redis（可选：连接失败时限流与 Token 黑名单降级放行）
	var (
		rdb       *redis.Client
		blacklist service.TokenBlacklist
		cache     handler.Pinger
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，限流与 Token 黑名单将不可用", zap.Error(err))
			rdb = nil
		} else {
			blacklist = rdb
			cache = rdb
		}
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. LINE 回复客户端（未配置 Access Token 时只打卡不回复）
	var replier service.Replier
	if cfg.Line.Enabled() && cfg.Line.ChannelAccessToken != "" {
		bot, err := linebot.New(cfg.Line.ChannelSecret, cfg.Line.ChannelAccessToken)
		if err != nil {
			logger.Warn("LINE 客户端初始化失败，打卡后不回复", zap.Error(err))
		} else {
			replier = service.NewBotReplier(bot)
		}
	}
	if !cfg.Line.Enabled() {
		logger.Info("未配置 line.channel_secret，LINE Webhook 关闭")
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(conn)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, replier, logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Auth.EnsureBootstrapAdmin(bootCtx); err != nil {
		logger.Warn("初始管理员检查失败", zap.Error(err))
	}
	bootCancel()

	h := handler.NewHandler(cfg, svc, conn, cache)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := conn.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}
