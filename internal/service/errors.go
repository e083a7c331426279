package service

import (
	"errors"

	"github.com/SegflowJP/line-bot/internal/progress"
)

// ── 校验类错误（存储访问之前返回） ──

var (
	ErrInvalidDate       = errors.New("日期格式必须为 YYYY-MM-DD")
	ErrInvalidStep       = progress.ErrInvalidStep
	ErrInvalidTimestamp  = errors.New("timestamp 必须为正的 UTC 毫秒数")
	ErrInvalidWorkerID   = errors.New("worker_id 必须为正整数")
	ErrInvalidWorkerName = errors.New("作业员姓名不能为空")
	ErrInvalidLanguage   = errors.New("语言只能为 ja 或 en")
)

// ── 业务错误 ──

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidToken       = errors.New("登录已失效，请重新登录")
	ErrAccountNotFound    = errors.New("账号不存在")
	ErrWorkerNotFound     = errors.New("作业员不存在")
	ErrExportRangeEmpty   = errors.New("所选区间内没有进度记录")
)

// IsValidationError 是否为输入校验错误
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidDate, ErrInvalidStep, ErrInvalidTimestamp,
		ErrInvalidWorkerID, ErrInvalidWorkerName, ErrInvalidLanguage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
