package timewindow

import (
	"time"
)

// Resolution 数据分辨率
type Resolution int

const (
	// ResolutionMinute 原始数据按分钟分桶（1 小时视图）
	ResolutionMinute Resolution = iota
	// ResolutionHour 原始数据按小时分桶（24 小时视图）
	ResolutionHour
	// ResolutionDay 日级 rollup（7 天视图）
	ResolutionDay
	// ResolutionDayWeekly 日级 rollup，可折叠成周均值（31 天视图）
	ResolutionDayWeekly
)

// 支持的回看窗口（小时）
const (
	LookbackHour  = 1
	LookbackDay   = 24
	LookbackWeek  = 168
	LookbackMonth = 720
)

// Window 解析后的时间窗口
// Start/End 均为报告时区的日历对齐边界：分桶必须在时区转换之后进行，
// 使"小时"桶和"天"桶与本地墙钟对齐
type Window struct {
	LookbackHours int
	Resolution    Resolution
	MaxPoints     int
	Start         time.Time
	End           time.Time
	Location      *time.Location
}

// Resolve 将请求的回看时长映射为分辨率和日历对齐边界
// 未识别的回看值按 24 小时处理（fail closed）
func Resolve(lookbackHours int, now time.Time, loc *time.Location) Window {
	local := now.In(loc)

	switch lookbackHours {
	case LookbackHour:
		end := local.Truncate(time.Minute).Add(time.Minute)
		return Window{
			LookbackHours: LookbackHour,
			Resolution:    ResolutionMinute,
			MaxPoints:     60,
			Start:         end.Add(-time.Hour),
			End:           end,
			Location:      loc,
		}
	case LookbackWeek:
		// 含今天在内的最近 7 个本地日历日
		today := midnight(local)
		return Window{
			LookbackHours: LookbackWeek,
			Resolution:    ResolutionDay,
			MaxPoints:     7,
			Start:         today.AddDate(0, 0, -6),
			End:           today.AddDate(0, 0, 1),
			Location:      loc,
		}
	case LookbackMonth:
		today := midnight(local)
		return Window{
			LookbackHours: LookbackMonth,
			Resolution:    ResolutionDayWeekly,
			MaxPoints:     31,
			Start:         today.AddDate(0, 0, -30),
			End:           today.AddDate(0, 0, 1),
			Location:      loc,
		}
	default:
		// 24 小时及所有未识别的取值
		end := hourStart(local).Add(time.Hour)
		return Window{
			LookbackHours: LookbackDay,
			Resolution:    ResolutionHour,
			MaxPoints:     96,
			Start:         end.Add(-24 * time.Hour),
			End:           end,
			Location:      loc,
		}
	}
}

// ExpectedBuckets 生成窗口内全部预期桶的起始时刻（本地日历对齐）
// 聚合管线以此为左表做回填：缺数据的桶必须显式出现
func (w Window) ExpectedBuckets() []time.Time {
	var step func(time.Time) time.Time
	switch w.Resolution {
	case ResolutionMinute:
		step = func(t time.Time) time.Time { return t.Add(time.Minute) }
	case ResolutionHour:
		step = func(t time.Time) time.Time { return t.Add(time.Hour) }
	default:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	}

	var buckets []time.Time
	for t := w.Start; t.Before(w.End); t = step(t) {
		buckets = append(buckets, t)
	}
	return buckets
}

// BucketKey 将读数时刻归入所属桶的起始时刻（先转报告时区再截断）
func (w Window) BucketKey(t time.Time) time.Time {
	local := t.In(w.Location)
	switch w.Resolution {
	case ResolutionMinute:
		return local.Truncate(time.Minute)
	case ResolutionHour:
		return hourStart(local)
	default:
		return midnight(local)
	}
}

// BucketLabel 桶的展示标签（本地墙钟）
func (w Window) BucketLabel(bucket time.Time) string {
	switch w.Resolution {
	case ResolutionMinute, ResolutionHour:
		return bucket.Format("15:04")
	default:
		return bucket.Format("Jan 02")
	}
}

// midnight 本地日历日零点
// 注意不能用 Truncate(24h)：Truncate 以 UTC 纪元对齐，非整时区偏移会错位
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// hourStart 本地整点
func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
