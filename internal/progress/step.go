package progress

import (
	"errors"
	"fmt"

	"github.com/SegflowJP/line-bot/internal/model"
)

// ErrInvalidStep 非法的打卡步骤
var ErrInvalidStep = errors.New("无效的打卡步骤")

// Step 一次打卡上报的步骤
type Step string

const (
	StepWakeUp   Step = "wakeUp"
	StepOnTheWay Step = "onTheWay"
	StepArrived  Step = "arrived"
)

// Steps 按业务顺序排列的全部步骤
var Steps = []Step{StepWakeUp, StepOnTheWay, StepArrived}

// ParseStep 将字符串解析为 Step
func ParseStep(s string) (Step, error) {
	for _, step := range Steps {
		if Step(s) == step {
			return step, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStep, s)
}

// Column 步骤对应的 daily_progress 列名
func (s Step) Column() string {
	switch s {
	case StepWakeUp:
		return "wake_up_time"
	case StepOnTheWay:
		return "on_the_way_time"
	case StepArrived:
		return "arrived_time"
	}
	return ""
}

// Apply 只写入 step 对应的字段，其余两个字段保持不变
func Apply(rec *model.DailyProgress, step Step, ts int64) {
	v := ts
	switch step {
	case StepWakeUp:
		rec.WakeUpTime = &v
	case StepOnTheWay:
		rec.OnTheWayTime = &v
	case StepArrived:
		rec.ArrivedTime = &v
	}
}
