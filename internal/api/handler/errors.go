package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SegflowJP/line-bot/internal/api/middleware"
	"github.com/SegflowJP/line-bot/internal/service"
	pkgerrors "github.com/SegflowJP/line-bot/pkg/errors"
	"github.com/SegflowJP/line-bot/pkg/response"
)

// bindError 绑定失败统一响应
func bindError(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}

// handleServiceError 将业务错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 22001, "日期格式必须为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidStep):
		response.BadRequest(c, 22002, "step 只能为 wakeUp / onTheWay / arrived")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.BadRequest(c, 22003, "作业员不存在")
	case service.IsValidationError(err):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrExportRangeEmpty):
		response.NotFound(c, 23001, "所选区间内没有进度记录")
	case errors.Is(err, pkgerrors.ErrStorageUnavailable):
		response.ServiceUnavailable(c)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
