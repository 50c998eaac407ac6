package reliability

import (
	"time"
)

// DefaultGapTolerance 相邻读数间隔的容忍上限，超出部分计为停机
const DefaultGapTolerance = 15 * time.Minute

// UptimeReport 在线率统计
type UptimeReport struct {
	UptimePercent   float64 `json:"uptime_percent"`
	DowntimeMinutes float64 `json:"downtime_minutes"`
	DowntimeHours   float64 `json:"downtime_hours"`
	Incidents       int     `json:"incidents"`
}

// Uptime 根据升序读数时刻计算周期内的在线率
// 任何超出容忍间隔的相邻读数间隙计一次停机事件，停机时长累计 (间隙 - 容忍值)；
// 末尾读数到 now 的间隙同样参与评估
func Uptime(timestamps []time.Time, periodHours float64, tolerance time.Duration, now time.Time) UptimeReport {
	periodMinutes := periodHours * 60
	if periodMinutes <= 0 {
		return UptimeReport{UptimePercent: 100}
	}
	if len(timestamps) == 0 {
		// 全程无读数：整个周期视为停机
		return UptimeReport{
			UptimePercent:   0,
			DowntimeMinutes: periodMinutes,
			DowntimeHours:   periodMinutes / 60,
			Incidents:       1,
		}
	}

	var downtime time.Duration
	incidents := 0
	record := func(gap time.Duration) {
		if gap > tolerance {
			downtime += gap - tolerance
			incidents++
		}
	}

	for i := 1; i < len(timestamps); i++ {
		record(timestamps[i].Sub(timestamps[i-1]))
	}
	record(now.Sub(timestamps[len(timestamps)-1]))

	downtimeMinutes := downtime.Minutes()
	if downtimeMinutes > periodMinutes {
		downtimeMinutes = periodMinutes
	}

	pct := (periodMinutes - downtimeMinutes) / periodMinutes * 100
	if pct < 0 {
		pct = 0
	}
	return UptimeReport{
		UptimePercent:   pct,
		DowntimeMinutes: downtimeMinutes,
		DowntimeHours:   downtimeMinutes / 60,
		Incidents:       incidents,
	}
}
