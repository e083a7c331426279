package model

// DailyProgress 每日进度表 — 对应 daily_progress
//
// 以 (worker_id, date) 唯一；三个时间点均为 UTC 毫秒，nil 表示该步骤尚未上报。
// worker_id 不建外键，上游可能先于作业员登记投递打卡。
type DailyProgress struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"                                  json:"id"`
	WorkerID     int64  `gorm:"not null;uniqueIndex:uq_daily_progress_worker_date,priority:1" json:"worker_id"`
	Date         string `gorm:"type:varchar(10);not null;uniqueIndex:uq_daily_progress_worker_date,priority:2;index" json:"date"` // YYYY-MM-DD（UTC+9）
	WakeUpTime   *int64 `json:"wake_up_time"`
	OnTheWayTime *int64 `json:"on_the_way_time"`
	ArrivedTime  *int64 `json:"arrived_time"`
	BaseModel
}

// TableName 指定表名
func (DailyProgress) TableName() string { return "daily_progress" }
