package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_HourWindow(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 14, 37, 42, 0, time.UTC)
	w := Resolve(LookbackHour, now, loc)

	assert.Equal(t, ResolutionMinute, w.Resolution)
	assert.Equal(t, 60, w.MaxPoints)
	assert.Equal(t, time.Hour, w.End.Sub(w.Start))

	buckets := w.ExpectedBuckets()
	assert.Len(t, buckets, 60)
}

func TestResolve_DayWindowAlignsToLocalHour(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata") // UTC+5:30，非整小时偏移
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 14, 37, 0, 0, time.UTC)
	w := Resolve(LookbackDay, now, loc)

	assert.Equal(t, ResolutionHour, w.Resolution)
	// 边界必须对齐本地整点
	assert.Equal(t, 0, w.Start.In(loc).Minute())
	assert.Equal(t, 0, w.End.In(loc).Minute())
	assert.Len(t, w.ExpectedBuckets(), 24)
}

func TestResolve_WeekWindowCoversSevenLocalDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	w := Resolve(LookbackWeek, now, loc)

	assert.Equal(t, ResolutionDay, w.Resolution)
	buckets := w.ExpectedBuckets()
	require.Len(t, buckets, 7)
	for _, b := range buckets {
		local := b.In(loc)
		assert.Equal(t, 0, local.Hour())
		assert.Equal(t, 0, local.Minute())
	}
	// 最后一个桶是今天的本地零点
	last := buckets[6].In(loc)
	assert.Equal(t, now.In(loc).Day(), last.Day())
}

func TestResolve_MonthWindowCoversThirtyOneDays(t *testing.T) {
	w := Resolve(LookbackMonth, time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, ResolutionDayWeekly, w.Resolution)
	assert.Len(t, w.ExpectedBuckets(), 31)
}

func TestResolve_UnknownLookbackFailsClosedTo24h(t *testing.T) {
	for _, lookback := range []int{0, -5, 12, 999} {
		w := Resolve(lookback, time.Now(), time.UTC)
		assert.Equal(t, LookbackDay, w.LookbackHours, "lookback %d", lookback)
		assert.Equal(t, ResolutionHour, w.Resolution)
	}
}

func TestBucketKey_ConvertsToReportTimezoneFirst(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	w := Resolve(LookbackWeek, now, loc)

	// UTC 03:00 是纽约前一天的 22:00（EST 偏移 -5）
	reading := time.Date(2026, 3, 8, 3, 0, 0, 0, time.UTC)
	key := w.BucketKey(reading)
	assert.Equal(t, 7, key.In(loc).Day())
}

func TestExpectedBuckets_DSTTransitionStillSevenDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-08 是美国夏令时切换日
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, loc)
	w := Resolve(LookbackWeek, now, loc)
	assert.Len(t, w.ExpectedBuckets(), 7)
}
