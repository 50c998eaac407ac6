package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"plantwatch-analytics/internal/models"

	"go.uber.org/zap"
)

// 去重窗口：24 小时内相同 (sensor_type, location, value, threshold) 且仍
// active 的报警不重复写入
const dedupWindow = 24 * time.Hour

// AlertsRepository 报警事件仓库（alert_events 表）
type AlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertsRepository 创建报警事件仓库
func NewAlertsRepository(db *sql.DB, logger *zap.Logger) *AlertsRepository {
	return &AlertsRepository{
		db:     db,
		logger: logger,
	}
}

// ListEvents 取 [from, to) 内创建的报警事件，按创建时间升序
func (r *AlertsRepository) ListEvents(ctx context.Context, from, to time.Time) ([]models.AlertEvent, error) {
	query := `
		SELECT
			event_id,
			created_at,
			severity,
			priority,
			sensor_type,
			sensor_value,
			threshold_value,
			location,
			status,
			cost
		FROM alert_events
		WHERE created_at >= $1
		  AND created_at < $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query alert events: %w", err)
	}
	defer rows.Close()

	var events []models.AlertEvent
	for rows.Next() {
		var e models.AlertEvent
		if err := rows.Scan(
			&e.EventID,
			&e.CreatedAt,
			&e.Severity,
			&e.Priority,
			&e.SensorType,
			&e.SensorValue,
			&e.ThresholdValue,
			&e.Location,
			&e.Status,
			&e.Cost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert events: %w", err)
	}

	return events, nil
}

// HasOpenDuplicate 查询去重窗口内是否已有相同四元组的 active 报警
func (r *AlertsRepository) HasOpenDuplicate(ctx context.Context, event *models.AlertEvent) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM alert_events
		WHERE sensor_type = $1
		  AND location = $2
		  AND sensor_value = $3
		  AND threshold_value = $4
		  AND status = $5
		  AND created_at >= $6
	`

	var count int
	err := r.db.QueryRowContext(ctx, query,
		event.SensorType,
		event.Location,
		event.SensorValue,
		event.ThresholdValue,
		models.AlertActive,
		event.CreatedAt.Add(-dedupWindow).UTC(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate alert: %w", err)
	}
	return count > 0, nil
}

// CreateEvent 写入报警事件（调用方需先做去重检查）
func (r *AlertsRepository) CreateEvent(ctx context.Context, event *models.AlertEvent) error {
	query := `
		INSERT INTO alert_events (
			event_id,
			created_at,
			severity,
			priority,
			sensor_type,
			sensor_value,
			threshold_value,
			location,
			status,
			cost
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.EventID,
		event.CreatedAt.UTC(),
		event.Severity,
		event.Priority,
		event.SensorType,
		event.SensorValue,
		event.ThresholdValue,
		event.Location,
		event.Status,
		event.Cost,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert event: %w", err)
	}

	r.logger.Info("Alert event created",
		zap.String("event_id", event.EventID),
		zap.String("sensor_type", event.SensorType),
		zap.String("severity", event.Severity),
		zap.String("location", event.Location),
	)
	return nil
}
