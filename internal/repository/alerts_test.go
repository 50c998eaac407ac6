package repository

import (
	"context"
	"testing"
	"time"

	"plantwatch-analytics/internal/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleAlert(created time.Time) *models.AlertEvent {
	return &models.AlertEvent{
		EventID:        "b0c2c6af-2b1d-4c36-9f6c-2f0a8f3a1d50",
		CreatedAt:      created,
		Severity:       models.SeverityCritical,
		Priority:       "high",
		SensorType:     "temperature",
		SensorValue:    41.2,
		ThresholdValue: 35.0,
		Location:       "press-shop",
		Status:         models.AlertActive,
		Cost:           150,
	}
}

func TestHasOpenDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertsRepository(db, zap.NewNop())
	created := time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)
	event := sampleAlert(created)

	mock.ExpectQuery(`SELECT COUNT\(1\)\s+FROM alert_events`).
		WithArgs(event.SensorType, event.Location, event.SensorValue,
			event.ThresholdValue, models.AlertActive, created.Add(-24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	dup, err := repo.HasOpenDuplicate(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOpenDuplicate_None(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertsRepository(db, zap.NewNop())
	event := sampleAlert(time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC))

	mock.ExpectQuery(`SELECT COUNT\(1\)\s+FROM alert_events`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	dup, err := repo.HasOpenDuplicate(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestCreateEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertsRepository(db, zap.NewNop())
	created := time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)
	event := sampleAlert(created)

	mock.ExpectExec(`INSERT INTO alert_events`).
		WithArgs(event.EventID, created, event.Severity, event.Priority,
			event.SensorType, event.SensorValue, event.ThresholdValue,
			event.Location, event.Status, event.Cost).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertsRepository(db, zap.NewNop())
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(7 * 24 * time.Hour)

	cols := []string{
		"event_id", "created_at", "severity", "priority", "sensor_type",
		"sensor_value", "threshold_value", "location", "status", "cost",
	}
	mock.ExpectQuery(`SELECT\s+event_id,`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("e1", from.Add(time.Hour), "critical", "high",
				"temperature", 41.2, 35.0, "press-shop", "active", 150.0).
			AddRow("e2", from.Add(2*time.Hour), "medium", "normal",
				"humidity", 80.0, 75.0, "press-shop", "acknowledged", 0.0))

	events, err := repo.ListEvents(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].EventID)
	assert.Equal(t, models.SeverityCritical, events[0].Severity)
	assert.Equal(t, "humidity", events[1].SensorType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
