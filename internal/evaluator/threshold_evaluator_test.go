package evaluator

import (
	"context"
	"testing"
	"time"

	"plantwatch-analytics/internal/aggregation"
	"plantwatch-analytics/internal/config"
	"plantwatch-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr(v float64) *float64 { return &v }

// fakeStore 同时充当最新读数来源与报警写入端
type fakeStore struct {
	latest    map[string]*models.SensorReading
	readings  []models.SensorReading
	duplicate bool
	created   []models.AlertEvent
}

func (f *fakeStore) FetchLatestReading(_ context.Context, location string) (*models.SensorReading, error) {
	return f.latest[location], nil
}

func (f *fakeStore) ListLocations(_ context.Context, _ time.Time) ([]string, error) {
	var out []string
	for loc := range f.latest {
		out = append(out, loc)
	}
	return out, nil
}

func (f *fakeStore) FetchReadings(_ context.Context, _ string, _, _ time.Time) ([]models.SensorReading, error) {
	return f.readings, nil
}

func (f *fakeStore) HasOpenDuplicate(_ context.Context, _ *models.AlertEvent) (bool, error) {
	return f.duplicate, nil
}

func (f *fakeStore) CreateEvent(_ context.Context, event *models.AlertEvent) error {
	f.created = append(f.created, *event)
	return nil
}

// noRollups 评估走 24h 窗口，日汇总永远不参与
type noRollups struct{}

func (noRollups) FetchRollups(_ context.Context, _, _ string, _, _ time.Time) ([]models.AggregatedBucket, error) {
	return nil, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Analytics.ReportTimezone = "UTC"
	cfg.Analytics.SigmaMultiplier = 3
	cfg.Analytics.PollInterval = 60
	return cfg
}

// historyReadings 产出均值约 20°C、波动小的温度历史
func historyReadings(now time.Time) []models.SensorReading {
	var out []models.SensorReading
	values := []float64{19, 20, 21, 20, 19.5, 20.5}
	for i, v := range values {
		out = append(out, models.SensorReading{
			RecordedAt:  now.Add(-time.Duration(i+1) * time.Hour),
			Location:    "press-shop",
			Temperature: ptr(v),
		})
	}
	return out
}

func newEvaluator(store *fakeStore) *ThresholdEvaluator {
	cfg := testConfig()
	logger := zap.NewNop()
	pipeline := aggregation.NewPipeline(store, noRollups{}, logger)
	return NewThresholdEvaluator(cfg, pipeline, store, store, logger)
}

func TestEvaluateLocation_CreatesAlertOnCriticalBreach(t *testing.T) {
	now := time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		latest: map[string]*models.SensorReading{
			"press-shop": {
				RecordedAt:  now,
				Location:    "press-shop",
				Temperature: ptr(60), // 远超 μ+3σ
			},
		},
		readings: historyReadings(now),
	}

	ev := newEvaluator(store)
	require.NoError(t, ev.EvaluateLocation(context.Background(), "press-shop", now))

	require.Len(t, store.created, 1)
	alert := store.created[0]
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, "high", alert.Priority)
	assert.Equal(t, "temperature", alert.SensorType)
	assert.InDelta(t, 60, alert.SensorValue, 1e-9)
	assert.Equal(t, "press-shop", alert.Location)
	assert.Equal(t, models.AlertActive, alert.Status)
	assert.NotEmpty(t, alert.EventID)
}

func TestEvaluateLocation_WarningBreachGetsNormalPriority(t *testing.T) {
	now := time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)
	// μ=20 σ≈0.68：21.8 在 2σ 与 3σ 之间，只触发 high 级别
	store := &fakeStore{
		latest: map[string]*models.SensorReading{
			"press-shop": {
				RecordedAt:  now,
				Location:    "press-shop",
				Temperature: ptr(21.8),
			},
		},
		readings: historyReadings(now),
	}

	ev := newEvaluator(store)
	require.NoError(t, ev.EvaluateLocation(context.Background(), "press-shop", now))

	require.Len(t, store.created, 1)
	assert.Equal(t, models.SeverityHigh, store.created[0].Severity)
	assert.Equal(t, "normal", store.created[0].Priority)
}

func TestEvaluateLocation_DuplicateSuppressed(t *testing.T) {
	now := time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		latest: map[string]*models.SensorReading{
			"press-shop": {
				RecordedAt:  now,
				Location:    "press-shop",
				Temperature: ptr(60),
			},
		},
		readings:  historyReadings(now),
		duplicate: true,
	}

	ev := newEvaluator(store)
	require.NoError(t, ev.EvaluateLocation(context.Background(), "press-shop", now))
	assert.Empty(t, store.created)
}

func TestEvaluateLocation_InBandReadingNoAlert(t *testing.T) {
	now := time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		latest: map[string]*models.SensorReading{
			"press-shop": {
				RecordedAt:  now,
				Location:    "press-shop",
				Temperature: ptr(20.2),
			},
		},
		readings: historyReadings(now),
	}

	ev := newEvaluator(store)
	require.NoError(t, ev.EvaluateLocation(context.Background(), "press-shop", now))
	assert.Empty(t, store.created)
}

func TestEvaluateLocation_NoLatestReadingIsNoop(t *testing.T) {
	store := &fakeStore{latest: map[string]*models.SensorReading{}}
	ev := newEvaluator(store)
	require.NoError(t, ev.EvaluateLocation(context.Background(), "press-shop", time.Now()))
	assert.Empty(t, store.created)
}
