package progress

import "github.com/SegflowJP/line-bot/internal/model"

// Status 作业员当日状态，四者互斥
type Status string

const (
	StatusArrived    Status = "arrived"
	StatusOnTheWay   Status = "onTheWay"
	StatusAwake      Status = "awake"
	StatusNoResponse Status = "noResponse"
)

// Classify 按"走得最远的一步"判定状态。
// 优先级 arrived > onTheWay > awake，中间步骤缺失不会降级。
// rec 为 nil 表示当日没有记录。
func Classify(rec *model.DailyProgress) Status {
	switch {
	case rec == nil:
		return StatusNoResponse
	case rec.ArrivedTime != nil:
		return StatusArrived
	case rec.OnTheWayTime != nil:
		return StatusOnTheWay
	case rec.WakeUpTime != nil:
		return StatusAwake
	default:
		return StatusNoResponse
	}
}

// Percent 状态对应的展示百分比，只由状态决定
func Percent(s Status) int {
	switch s {
	case StatusArrived:
		return 100
	case StatusOnTheWay:
		return 66
	case StatusAwake:
		return 33
	default:
		return 0
	}
}

// Progress 同时返回状态与百分比
func Progress(rec *model.DailyProgress) (Status, int) {
	s := Classify(rec)
	return s, Percent(s)
}
