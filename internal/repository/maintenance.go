package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"plantwatch-analytics/internal/models"

	"go.uber.org/zap"
)

// MaintenanceRepository 维护任务仓库（maintenance_tasks 表，只读）
type MaintenanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMaintenanceRepository 创建维护任务仓库
func NewMaintenanceRepository(db *sql.DB, logger *zap.Logger) *MaintenanceRepository {
	return &MaintenanceRepository{
		db:     db,
		logger: logger,
	}
}

// ListTasks 取 [from, to) 内创建的维护任务，按创建时间升序
func (r *MaintenanceRepository) ListTasks(ctx context.Context, from, to time.Time) ([]models.MaintenanceTask, error) {
	query := `
		SELECT
			task_id,
			created_at,
			due_date,
			completed_at,
			status,
			task_type,
			labor_cost,
			parts_cost
		FROM maintenance_tasks
		WHERE created_at >= $1
		  AND created_at < $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.MaintenanceTask
	for rows.Next() {
		var task models.MaintenanceTask
		var completedAt sql.NullTime
		if err := rows.Scan(
			&task.TaskID,
			&task.CreatedAt,
			&task.DueDate,
			&completedAt,
			&task.Status,
			&task.TaskType,
			&task.LaborCost,
			&task.PartsCost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance task: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			task.CompletedAt = &t
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate maintenance tasks: %w", err)
	}

	return tasks, nil
}
