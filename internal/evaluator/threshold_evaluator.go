package evaluator

import (
	"context"
	"fmt"
	"time"

	"plantwatch-analytics/internal/aggregation"
	"plantwatch-analytics/internal/channels"
	"plantwatch-analytics/internal/config"
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/threshold"
	"plantwatch-analytics/internal/timewindow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertSink 报警事件写入端（去重 + 落库）
type AlertSink interface {
	HasOpenDuplicate(ctx context.Context, event *models.AlertEvent) (bool, error)
	CreateEvent(ctx context.Context, event *models.AlertEvent) error
}

// LatestSource 最新读数来源
type LatestSource interface {
	FetchLatestReading(ctx context.Context, location string) (*models.SensorReading, error)
	ListLocations(ctx context.Context, since time.Time) ([]string, error)
}

// ThresholdEvaluator 阈值评估器
// 周期性用当前 24h 窗口的动态阈值复核各位置的最新读数，越界即写报警事件；
// 阈值语义与面板展示完全同源（同一套 threshold.Compute）
type ThresholdEvaluator struct {
	config   *config.Config
	pipeline *aggregation.Pipeline
	latest   LatestSource
	alerts   AlertSink
	logger   *zap.Logger
}

// NewThresholdEvaluator 创建阈值评估器
func NewThresholdEvaluator(
	cfg *config.Config,
	pipeline *aggregation.Pipeline,
	latest LatestSource,
	alerts AlertSink,
	logger *zap.Logger,
) *ThresholdEvaluator {
	return &ThresholdEvaluator{
		config:   cfg,
		pipeline: pipeline,
		latest:   latest,
		alerts:   alerts,
		logger:   logger,
	}
}

// EvaluateAll 评估窗口内活跃的全部位置
func (e *ThresholdEvaluator) EvaluateAll(ctx context.Context, now time.Time) error {
	locations, err := e.latest.ListLocations(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to list active locations: %w", err)
	}

	for _, location := range locations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := e.EvaluateLocation(ctx, location, now); err != nil {
			e.logger.Error("Failed to evaluate location",
				zap.String("location", location),
				zap.Error(err),
			)
			// 继续处理其他位置，不中断
		}
	}
	return nil
}

// EvaluateLocation 评估单个位置的最新读数
func (e *ThresholdEvaluator) EvaluateLocation(ctx context.Context, location string, now time.Time) error {
	reading, err := e.latest.FetchLatestReading(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to fetch latest reading: %w", err)
	}
	if reading == nil {
		return nil
	}

	w := timewindow.Resolve(timewindow.LookbackDay, now, e.config.ReportLocation())
	series, err := e.pipeline.BuildSeries(ctx, location, w)
	if err != nil {
		return fmt.Errorf("failed to build window series: %w", err)
	}

	var alerts []models.AlertEvent
	for _, desc := range channels.All() {
		value := reading.Channel(desc.ID)
		if value == nil {
			continue
		}

		values := aggregation.ChannelValues(series, desc.ID)
		bands := threshold.Compute(values, desc, e.config.Analytics.SigmaMultiplier)
		severity, bound, crossed := bands.Exceeds(*value)
		if !crossed {
			continue
		}

		priority := "normal"
		if severity == models.SeverityCritical {
			priority = "high"
		}
		alerts = append(alerts, models.AlertEvent{
			EventID:        uuid.NewString(),
			CreatedAt:      now,
			Severity:       severity,
			Priority:       priority,
			SensorType:     desc.ID,
			SensorValue:    *value,
			ThresholdValue: bound,
			Location:       location,
			Status:         models.AlertActive,
		})
	}

	for i := range alerts {
		alert := &alerts[i]
		dup, err := e.alerts.HasOpenDuplicate(ctx, alert)
		if err != nil {
			e.logger.Error("Failed to check duplicate alert",
				zap.String("sensor_type", alert.SensorType),
				zap.Error(err),
			)
			continue
		}
		if dup {
			continue
		}
		if err := e.alerts.CreateEvent(ctx, alert); err != nil {
			e.logger.Error("Failed to create alert event",
				zap.String("event_id", alert.EventID),
				zap.String("sensor_type", alert.SensorType),
				zap.Error(err),
			)
			// 继续写其他报警，不中断
		}
	}
	return nil
}

// Run 按配置的轮询间隔持续评估，直到 ctx 取消
func (e *ThresholdEvaluator) Run(ctx context.Context) error {
	interval := time.Duration(e.config.Analytics.PollInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Threshold evaluator started",
		zap.Duration("interval", interval),
	)

	// 立即执行一次
	if err := e.EvaluateAll(ctx, time.Now()); err != nil && err != context.Canceled {
		e.logger.Error("Failed to evaluate on startup",
			zap.Error(err),
		)
	}

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Threshold evaluator stopped")
			return nil
		case now := <-ticker.C:
			if err := e.EvaluateAll(ctx, now); err != nil {
				if err == context.Canceled {
					return nil
				}
				e.logger.Error("Failed to evaluate locations",
					zap.Error(err),
				)
				// 继续下一轮，不中断
			}
		}
	}
}
