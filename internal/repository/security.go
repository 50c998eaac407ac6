package repository

import (
	"context"
	"database/sql"
	"fmt"

	"plantwatch-analytics/internal/models"

	"go.uber.org/zap"
)

// 门禁配置缺省值（security_settings 表无记录时使用）
var defaultSecuritySettings = models.SecuritySettings{
	NightModeStart:         "22:00",
	NightModeEnd:           "06:00",
	MaxOpenDurationSeconds: 180,
}

// SecurityRepository 门禁安全配置仓库（security_settings 单行表）
type SecurityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSecurityRepository 创建门禁配置仓库
func NewSecurityRepository(db *sql.DB, logger *zap.Logger) *SecurityRepository {
	return &SecurityRepository{
		db:     db,
		logger: logger,
	}
}

// GetSettings 读取门禁安全配置，表为空时返回缺省值
func (r *SecurityRepository) GetSettings(ctx context.Context) (models.SecuritySettings, error) {
	query := `
		SELECT
			night_mode_start,
			night_mode_end,
			max_open_duration_seconds
		FROM security_settings
		LIMIT 1
	`

	var settings models.SecuritySettings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.NightModeStart,
		&settings.NightModeEnd,
		&settings.MaxOpenDurationSeconds,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Info("No security settings row, using defaults")
			return defaultSecuritySettings, nil
		}
		return models.SecuritySettings{}, fmt.Errorf("failed to query security settings: %w", err)
	}
	return settings, nil
}
