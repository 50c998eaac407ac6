package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var readingCols = []string{
	"recorded_at", "location",
	"temperature", "humidity", "pressure", "gas_resistance",
	"pm1", "pm2_5", "pm10",
	"accel_x", "accel_y", "accel_z", "accel_mag",
	"gyro_x", "gyro_y", "gyro_z", "gyro_mag",
	"anomaly_score", "quality_score",
}

func TestFetchReadings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingsRepository(db, zap.NewNop())
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows := sqlmock.NewRows(readingCols).
		AddRow(from.Add(time.Hour), "press-shop",
			22.5, 45.0, 1013.2, nil,
			nil, 12.0, nil,
			0.01, -0.02, 9.81, 9.81,
			nil, nil, nil, nil,
			0.2, 93.0).
		AddRow(from.Add(2*time.Hour), "press-shop",
			nil, nil, nil, nil,
			nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil)

	mock.ExpectQuery(`SELECT\s+recorded_at,`).
		WithArgs("press-shop", from, to).
		WillReturnRows(rows)

	readings, err := repo.FetchReadings(context.Background(), "press-shop", from, to)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	// 非空通道还原为指针值，空列保持 nil
	require.NotNil(t, readings[0].Temperature)
	assert.InDelta(t, 22.5, *readings[0].Temperature, 1e-9)
	require.NotNil(t, readings[0].PM25)
	assert.InDelta(t, 12.0, *readings[0].PM25, 1e-9)
	assert.Nil(t, readings[0].GasResistance)
	assert.Nil(t, readings[0].PM1)

	// 全空行合法，代表该时刻只有记录没有通道值
	assert.Nil(t, readings[1].Temperature)
	assert.Nil(t, readings[1].QualityScore)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchReadings_EmptyLocation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingsRepository(db, zap.NewNop())
	_, err = repo.FetchReadings(context.Background(), "", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}

func TestFetchLatestReading_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingsRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT\s+recorded_at,`).
		WithArgs("press-shop").
		WillReturnRows(sqlmock.NewRows(readingCols))

	reading, err := repo.FetchLatestReading(context.Background(), "press-shop")
	require.NoError(t, err)
	assert.Nil(t, reading)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLocations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReadingsRepository(db, zap.NewNop())
	since := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT DISTINCT location`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"location"}).
			AddRow("assembly-line").
			AddRow("press-shop"))

	locations, err := repo.ListLocations(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, []string{"assembly-line", "press-shop"}, locations)
	assert.NoError(t, mock.ExpectationsWereMet())
}
