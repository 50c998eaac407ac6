package reliability

import (
	"testing"
	"time"

	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson_SelfCorrelationIsOne(t *testing.T) {
	xs := []float64{1, 3, 2, 8, 5}

	r := stats.Pearson(xs, xs)
	require.NotNil(t, r)
	assert.InDelta(t, 1, *r, 1e-6)
}

func TestPearson_NegationIsMinusOne(t *testing.T) {
	xs := []float64{1, 3, 2, 8, 5}
	ys := make([]float64, len(xs))
	for i, v := range xs {
		ys[i] = -v
	}

	r := stats.Pearson(xs, ys)
	require.NotNil(t, r)
	assert.InDelta(t, -1, *r, 1e-6)
}

func TestPearson_RequiresTwoPointsAndVariance(t *testing.T) {
	assert.Nil(t, stats.Pearson([]float64{1}, []float64{2}))
	assert.Nil(t, stats.Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
}

func TestCorrelateFailures_RanksByAbsoluteR(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var readings []models.SensorReading
	var events []models.AlertEvent
	for day := 0; day < 6; day++ {
		at := base.AddDate(0, 0, day)
		temp := 20.0 + float64(day)*5 // 随天数单调升高
		hum := 50.0                   // 恒定，无方差 → 被跳过
		readings = append(readings, models.SensorReading{
			RecordedAt:  at,
			Location:    "press-shop",
			Temperature: &temp,
			Humidity:    &hum,
		})
		// 后 3 天每天一条 critical：温度与故障高度正相关
		if day >= 3 {
			events = append(events, models.AlertEvent{
				CreatedAt: at,
				Severity:  models.SeverityCritical,
				Priority:  "high",
			})
		}
	}

	ranked := CorrelateFailures(readings, events, loc)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "temperature", ranked[0].Channel)
	assert.Greater(t, ranked[0].R, 0.8)
	assert.Equal(t, 6, ranked[0].PairedDays)

	for _, c := range ranked {
		assert.NotEqual(t, "humidity", c.Channel, "zero-variance channel must be skipped")
	}
}

func TestCorrelateFailures_MissingDaysNotZeroFilled(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// 温度只在第 0、1 天有样本；湿度覆盖 0..3 天
	t0, t1 := 20.0, 30.0
	readings := []models.SensorReading{
		{RecordedAt: base, Location: "l", Temperature: &t0},
		{RecordedAt: base.AddDate(0, 0, 1), Location: "l", Temperature: &t1},
	}
	for day := 0; day < 4; day++ {
		h := 40.0 + float64(day)*10
		readings = append(readings, models.SensorReading{
			RecordedAt: base.AddDate(0, 0, day),
			Location:   "l",
			Humidity:   &h,
		})
	}
	events := []models.AlertEvent{
		{CreatedAt: base.AddDate(0, 0, 1), Severity: models.SeverityHigh},
		{CreatedAt: base.AddDate(0, 0, 3), Severity: models.SeverityHigh},
	}

	ranked := CorrelateFailures(readings, events, loc)
	for _, c := range ranked {
		if c.Channel == "temperature" {
			// 只配对温度有值的 2 天，缺失日不得按 0 补齐
			assert.Equal(t, 2, c.PairedDays)
		}
	}
}
