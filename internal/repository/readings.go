package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"plantwatch-analytics/internal/models"

	"go.uber.org/zap"
)

// ReadingsRepository 原始传感器读数仓库（sensor_readings 表，只读）
type ReadingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingsRepository 创建读数仓库
func NewReadingsRepository(db *sql.DB, logger *zap.Logger) *ReadingsRepository {
	return &ReadingsRepository{
		db:     db,
		logger: logger,
	}
}

const readingColumns = `
			recorded_at,
			location,
			temperature,
			humidity,
			pressure,
			gas_resistance,
			pm1,
			pm2_5,
			pm10,
			accel_x,
			accel_y,
			accel_z,
			accel_mag,
			gyro_x,
			gyro_y,
			gyro_z,
			gyro_mag,
			anomaly_score,
			quality_score`

// FetchReadings 按时间升序取某位置在 [from, to) 内的全部读数
func (r *ReadingsRepository) FetchReadings(ctx context.Context, location string, from, to time.Time) ([]models.SensorReading, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}

	query := `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE location = $1
		  AND recorded_at >= $2
		  AND recorded_at < $3
		ORDER BY recorded_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, location, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor readings: %w", err)
	}
	defer rows.Close()

	var readings []models.SensorReading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sensor reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor readings: %w", err)
	}

	return readings, nil
}

// FetchLatestReading 取某位置最新的一条读数，无数据返回 nil
func (r *ReadingsRepository) FetchLatestReading(ctx context.Context, location string) (*models.SensorReading, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}

	query := `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE location = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, location)
	reading, err := scanReading(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest reading: %w", err)
	}
	return &reading, nil
}

// ListLocations 返回窗口内出现过读数的全部位置
func (r *ReadingsRepository) ListLocations(ctx context.Context, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT location
		FROM sensor_readings
		WHERE recorded_at >= $1
		ORDER BY location
	`

	rows, err := r.db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// scanner 兼容 *sql.Row 和 *sql.Rows 的扫描接口
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanReading 扫描一行读数，可空通道列用 sql.NullFloat64 承接
func scanReading(s scanner) (models.SensorReading, error) {
	var reading models.SensorReading
	var cols [17]sql.NullFloat64

	err := s.Scan(
		&reading.RecordedAt,
		&reading.Location,
		&cols[0], &cols[1], &cols[2], &cols[3],
		&cols[4], &cols[5], &cols[6],
		&cols[7], &cols[8], &cols[9], &cols[10],
		&cols[11], &cols[12], &cols[13], &cols[14],
		&cols[15], &cols[16],
	)
	if err != nil {
		return reading, err
	}

	targets := []**float64{
		&reading.Temperature, &reading.Humidity, &reading.Pressure, &reading.GasResistance,
		&reading.PM1, &reading.PM25, &reading.PM10,
		&reading.AccelX, &reading.AccelY, &reading.AccelZ, &reading.AccelMag,
		&reading.GyroX, &reading.GyroY, &reading.GyroZ, &reading.GyroMag,
		&reading.AnomalyScore, &reading.QualityScore,
	}
	for i, target := range targets {
		if cols[i].Valid {
			v := cols[i].Float64
			*target = &v
		}
	}
	return reading, nil
}
