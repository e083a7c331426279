package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SegflowJP/line-bot/internal/dto"
	"github.com/SegflowJP/line-bot/pkg/response"
)

// Pinger 可进行连通性检查的依赖（数据库 / Redis）
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	stateUp       = "up"
	stateDown     = "down"
	stateDisabled = "disabled"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler 创建 HealthHandler，cache 可为 nil
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check 存活检查
// GET /api/v1/health
// 进程存活即返回 200；数据库不可用时 status 为 degraded
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status: "ok",
		DB:     ping(ctx, h.db),
		Redis:  ping(ctx, h.cache),
	}
	if resp.DB != stateUp {
		resp.Status = "degraded"
	}
	response.OK(c, resp)
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return stateDisabled
	}
	if err := p.Ping(ctx); err != nil {
		return stateDown
	}
	return stateUp
}
