package reliability

import (
	"math"
	"sort"
	"time"

	"plantwatch-analytics/internal/channels"
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"
)

// ChannelCorrelation 单通道与故障的皮尔逊相关
type ChannelCorrelation struct {
	Channel     string  `json:"channel"`
	DisplayName string  `json:"display_name"`
	R           float64 `json:"r"`
	PairedDays  int     `json:"paired_days"`
}

// CorrelateFailures 计算各通道日均值与故障发生的相关性，按 |r| 降序排列
// 每个本地日历日：通道有 ≥1 个样本才取日均值（缺失日不补零），
// 故障指示为该日是否出现过合格故障事件（critical/high）
func CorrelateFailures(readings []models.SensorReading, events []models.AlertEvent, loc *time.Location) []ChannelCorrelation {
	failureDays := make(map[time.Time]bool)
	for _, e := range events {
		if e.Severity != models.SeverityCritical && e.Severity != models.SeverityHigh {
			continue
		}
		failureDays[localDay(e.CreatedAt, loc)] = true
	}

	// 通道 → 日 → 样本累加
	type dayAcc struct {
		sum   float64
		count int
	}
	daily := make(map[string]map[time.Time]*dayAcc)
	for _, id := range channels.IDs() {
		daily[id] = make(map[time.Time]*dayAcc)
	}
	for _, r := range readings {
		day := localDay(r.RecordedAt, loc)
		for _, id := range channels.IDs() {
			v := r.Channel(id)
			if v == nil {
				continue
			}
			a, ok := daily[id][day]
			if !ok {
				a = &dayAcc{}
				daily[id][day] = a
			}
			a.sum += *v
			a.count++
		}
	}

	var out []ChannelCorrelation
	for _, desc := range channels.All() {
		perDay := daily[desc.ID]
		if len(perDay) < 2 {
			continue
		}

		days := make([]time.Time, 0, len(perDay))
		for d := range perDay {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

		xs := make([]float64, 0, len(days))
		ys := make([]float64, 0, len(days))
		for _, d := range days {
			a := perDay[d]
			xs = append(xs, a.sum/float64(a.count))
			if failureDays[d] {
				ys = append(ys, 1)
			} else {
				ys = append(ys, 0)
			}
		}

		r := stats.Pearson(xs, ys)
		if r == nil {
			continue
		}
		out = append(out, ChannelCorrelation{
			Channel:     desc.ID,
			DisplayName: desc.DisplayName,
			R:           *r,
			PairedDays:  len(days),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i].R) > math.Abs(out[j].R)
	})
	return out
}

func localDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
