package reliability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUptime_AllGapsWithinTolerance(t *testing.T) {
	start := time.Date(2026, 5, 19, 0, 0, 0, 0, time.UTC)
	now := start.Add(24 * time.Hour)

	// 每 10 分钟一条，1440 分钟内全部间隙 ≤15 分钟
	var timestamps []time.Time
	for ts := start; !ts.After(now); ts = ts.Add(10 * time.Minute) {
		timestamps = append(timestamps, ts)
	}

	report := Uptime(timestamps, 24, DefaultGapTolerance, now)
	assert.InDelta(t, 100, report.UptimePercent, 1e-9)
	assert.Equal(t, 0, report.Incidents)
	assert.InDelta(t, 0, report.DowntimeMinutes, 1e-9)
}

func TestUptime_SingleGapBeyondTolerance(t *testing.T) {
	start := time.Date(2026, 5, 19, 0, 0, 0, 0, time.UTC)
	now := start.Add(24 * time.Hour)

	// 10:00 → 10:40 有一个 40 分钟间隙，其余每 10 分钟一条
	var timestamps []time.Time
	for ts := start; !ts.After(now); ts = ts.Add(10 * time.Minute) {
		h := ts.Sub(start)
		if h > 10*time.Hour && h < 10*time.Hour+40*time.Minute {
			continue
		}
		timestamps = append(timestamps, ts)
	}

	report := Uptime(timestamps, 24, DefaultGapTolerance, now)
	// 40 分钟间隙 − 15 分钟容忍 = 25 分钟停机，1 次事件
	assert.Equal(t, 1, report.Incidents)
	assert.InDelta(t, 25, report.DowntimeMinutes, 1e-9)
	// (1440-25)/1440 ≈ 98.26%
	assert.InDelta(t, 98.26, report.UptimePercent, 0.01)
}

func TestUptime_TrailingGapToNowCounts(t *testing.T) {
	start := time.Date(2026, 5, 19, 0, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Hour)

	// 最后一条读数在 1 小时前：now 间隙 60 分钟 → 45 分钟停机
	timestamps := []time.Time{start, start.Add(30 * time.Minute), start.Add(time.Hour)}

	report := Uptime(timestamps, 2, DefaultGapTolerance, now)
	assert.Equal(t, 1, report.Incidents)
	assert.InDelta(t, 45, report.DowntimeMinutes, 1e-9)
}

func TestUptime_NoReadingsIsFullDowntime(t *testing.T) {
	now := time.Now()
	report := Uptime(nil, 24, DefaultGapTolerance, now)
	assert.InDelta(t, 0, report.UptimePercent, 1e-9)
	assert.Equal(t, 1, report.Incidents)
	assert.InDelta(t, 1440, report.DowntimeMinutes, 1e-9)
}
