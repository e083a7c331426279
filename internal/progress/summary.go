package progress

import "github.com/SegflowJP/line-bot/internal/model"

// Summary 某一天在职作业员的状态分布
// Awake+OnTheWay+Arrived+NoResponse == Total
type Summary struct {
	Total      int `json:"total"`
	Awake      int `json:"awake"`
	OnTheWay   int `json:"on_the_way"`
	Arrived    int `json:"arrived"`
	NoResponse int `json:"no_response"`
}

// Add 计入一个状态
func (s *Summary) Add(st Status) {
	s.Total++
	switch st {
	case StatusArrived:
		s.Arrived++
	case StatusOnTheWay:
		s.OnTheWay++
	case StatusAwake:
		s.Awake++
	default:
		s.NoResponse++
	}
}

// Index 以 worker_id 建立当日记录索引。
// 同一 worker 出现多条时保留第一条。
func Index(records []model.DailyProgress) map[int64]*model.DailyProgress {
	idx := make(map[int64]*model.DailyProgress, len(records))
	for i := range records {
		r := &records[i]
		if _, ok := idx[r.WorkerID]; ok {
			continue
		}
		idx[r.WorkerID] = r
	}
	return idx
}

// Summarize 汇总某一天的状态分布。
// 只统计 IsActive 的作业员；records 应为同一日期的记录，
// 不属于任何在职作业员的记录被忽略。
func Summarize(workers []model.Worker, records []model.DailyProgress) Summary {
	idx := Index(records)

	var sum Summary
	for i := range workers {
		w := &workers[i]
		if !w.IsActive {
			continue
		}
		sum.Add(Classify(idx[w.ID]))
	}
	return sum
}
