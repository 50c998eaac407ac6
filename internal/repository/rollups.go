package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"plantwatch-analytics/internal/channels"
	"plantwatch-analytics/internal/models"

	"go.uber.org/zap"
)

// RollupsRepository 预聚合数据仓库（sensor_rollups 表，上游 rollup 作业写入，只读）
type RollupsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRollupsRepository 创建 rollup 仓库
func NewRollupsRepository(db *sql.DB, logger *zap.Logger) *RollupsRepository {
	return &RollupsRepository{
		db:     db,
		logger: logger,
	}
}

// FetchRollups 按 (location, aggregation_level, 时间范围) 取预聚合桶
// 每通道三列（avg/min/max），列名约定为 {channel}_avg / {channel}_min / {channel}_max
func (r *RollupsRepository) FetchRollups(ctx context.Context, location, level string, from, to time.Time) ([]models.AggregatedBucket, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	if level != models.AggregationDay && level != models.AggregationWeek && level != models.AggregationMonth {
		return nil, fmt.Errorf("invalid aggregation level: %s", level)
	}

	ids := channels.IDs()
	cols := "time_bucket, location, sample_count"
	for _, id := range ids {
		cols += fmt.Sprintf(", %s_avg, %s_min, %s_max", id, id, id)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sensor_rollups
		WHERE location = $1
		  AND aggregation_level = $2
		  AND time_bucket >= $3
		  AND time_bucket < $4
		ORDER BY time_bucket ASC
	`, cols)

	rows, err := r.db.QueryContext(ctx, query, location, level, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor rollups: %w", err)
	}
	defer rows.Close()

	var buckets []models.AggregatedBucket
	for rows.Next() {
		bucket := models.AggregatedBucket{
			Level:    level,
			Averages: make(map[string]*float64, len(ids)),
			Minimums: make(map[string]*float64, len(ids)),
			Maximums: make(map[string]*float64, len(ids)),
		}

		nullable := make([]sql.NullFloat64, len(ids)*3)
		dest := []interface{}{&bucket.TimeBucket, &bucket.Location, &bucket.SampleCount}
		for i := range nullable {
			dest = append(dest, &nullable[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan sensor rollup: %w", err)
		}

		for i, id := range ids {
			if v := nullable[i*3]; v.Valid {
				avg := v.Float64
				bucket.Averages[id] = &avg
			}
			if v := nullable[i*3+1]; v.Valid {
				min := v.Float64
				bucket.Minimums[id] = &min
			}
			if v := nullable[i*3+2]; v.Valid {
				max := v.Float64
				bucket.Maximums[id] = &max
			}
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor rollups: %w", err)
	}

	return buckets, nil
}
