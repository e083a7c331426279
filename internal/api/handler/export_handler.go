package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SegflowJP/line-bot/internal/dto"
	"github.com/SegflowJP/line-bot/internal/service"
	"github.com/SegflowJP/line-bot/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportHistory 导出区间进度履历
// GET /api/v1/export/history?start_date=...&end_date=...
func (h *ExportHandler) ExportHistory(c *gin.Context) {
	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportHistory(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, service.ErrExportGenerateFail) {
			_ = c.Error(err)
			response.InternalError(c)
			return
		}
		handleServiceError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
