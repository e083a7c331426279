package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/SegflowJP/line-bot/internal/api/middleware"
	"github.com/SegflowJP/line-bot/internal/service"
	"github.com/SegflowJP/line-bot/pkg/response"
)

// LineHandler LINE Webhook 处理器
type LineHandler struct {
	lineSvc       service.LineService
	channelSecret string
}

// NewLineHandler 创建 LineHandler；channelSecret 为空时 Webhook 关闭
func NewLineHandler(lineSvc service.LineService, channelSecret string) *LineHandler {
	return &LineHandler{lineSvc: lineSvc, channelSecret: channelSecret}
}

// Webhook 接收 LINE 事件并转为打卡
// POST /api/v1/line/webhook
func (h *LineHandler) Webhook(c *gin.Context) {
	if h.channelSecret == "" {
		response.NotFound(c, 10003, "LINE Webhook 未启用")
		return
	}

	events, err := linebot.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		switch {
		case errors.Is(err, linebot.ErrInvalidSignature):
			response.BadRequest(c, 10001, "签名校验失败")
		case middleware.IsBodyTooLarge(err):
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		default:
			response.BadRequest(c, 10001, "无法解析 Webhook 请求")
		}
		return
	}

	// 存储不可用时返回 503，由 LINE 平台重投整批事件；打卡写入幂等，重投不会产生重复记录
	result := h.lineSvc.HandleEvents(c.Request.Context(), events)
	if result.StorageUnavailable {
		response.ServiceUnavailable(c)
		return
	}
	response.OK(c, result)
}
