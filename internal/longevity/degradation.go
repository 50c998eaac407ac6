package longevity

import (
	"sort"
	"time"

	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"
)

// 退化率边界（%/年）与历史不足时的默认值
const (
	MinDegradationRate     = 0.5
	MaxDegradationRate     = 10.0
	DefaultDegradationRate = 2.5
)

// DegradationRate 年化退化率（%/年）
// 质量代理按本地日历月分组；不足 3 个月返回固定默认值。
// 用最早 3 个月与最近 3 个月的均值之差，按实际跨越月数归一后年化，
// 最终夹在 [0.5, 10] 区间内
func DegradationRate(readings []models.SensorReading, loc *time.Location) float64 {
	type monthAcc struct {
		sum   float64
		count int
	}
	months := make(map[time.Time]*monthAcc)
	for _, r := range readings {
		q := r.QualityProxy()
		if q == nil {
			continue
		}
		local := r.RecordedAt.In(loc)
		key := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		a, ok := months[key]
		if !ok {
			a = &monthAcc{}
			months[key] = a
		}
		a.sum += *q
		a.count++
	}

	if len(months) < 3 {
		return DefaultDegradationRate
	}

	keys := make([]time.Time, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	monthly := make([]float64, 0, len(keys))
	for _, k := range keys {
		a := months[k]
		monthly = append(monthly, a.sum/float64(a.count))
	}

	first := *stats.Mean(monthly[:3])
	last := *stats.Mean(monthly[len(monthly)-3:])

	firstMonth := keys[1]                // 最早 3 个月的中心
	lastMonth := keys[len(keys)-2]       // 最近 3 个月的中心
	elapsed := monthsBetween(firstMonth, lastMonth)
	if elapsed < 1 {
		elapsed = 1
	}

	declinePerMonth := (first - last) / float64(elapsed)
	annualized := declinePerMonth * 12
	return stats.Clamp(annualized, MinDegradationRate, MaxDegradationRate)
}

// monthsBetween 两个月首之间的日历月数
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
