package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SegflowJP/line-bot/internal/api/middleware"
	"github.com/SegflowJP/line-bot/pkg/jwt"
	"github.com/SegflowJP/line-bot/pkg/response"
)

// GetClaims 取出可选认证注入的 Claims，匿名时返回 nil
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// parseIDParam 解析路径参数 :id 为正整数，失败时写入 400
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "ID 必须为正整数")
		return 0, false
	}
	return id, true
}
