// Package dateutil 处理打卡业务使用的日历日期。
//
// 业务日按固定 UTC+9 偏移划分，不依赖服务器本地时区，也不读取 tzdata。
package dateutil

import (
	"regexp"
	"time"
)

// Layout 日期字符串格式
const Layout = "2006-01-02"

// Offset 业务日的固定时区偏移（UTC+9）
const Offset = 9 * time.Hour

// Zone 固定偏移时区
var Zone = time.FixedZone("UTC+9", int(Offset/time.Second))

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Valid 校验日期字符串是否为 YYYY-MM-DD 形式（仅语法校验）
func Valid(s string) bool {
	return datePattern.MatchString(s)
}

// DateOf 返回时间点所属的业务日
func DateOf(t time.Time) string {
	return t.In(Zone).Format(Layout)
}

// DateOfMillis 返回 UTC 毫秒时间戳所属的业务日
func DateOfMillis(ms int64) string {
	return DateOf(time.UnixMilli(ms))
}

// Today 返回当前业务日
func Today(now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	return DateOf(now())
}

// FormatClock 将毫秒时间戳格式化为业务时区的 HH:MM，空值返回 "—"
func FormatClock(ms *int64) string {
	if ms == nil {
		return "—"
	}
	return time.UnixMilli(*ms).In(Zone).Format("15:04")
}
