package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"plantwatch-analytics/internal/aggregation"
	"plantwatch-analytics/internal/channels"
	"plantwatch-analytics/internal/config"
	"plantwatch-analytics/internal/consumer"
	"plantwatch-analytics/internal/database"
	"plantwatch-analytics/internal/doorwatch"
	"plantwatch-analytics/internal/evaluator"
	"plantwatch-analytics/internal/longevity"
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/reliability"
	"plantwatch-analytics/internal/repository"
	"plantwatch-analytics/internal/threshold"
	"plantwatch-analytics/internal/timewindow"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsService 传感器分析服务（整合各层）
type AnalyticsService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	readingsRepo    *repository.ReadingsRepository
	rollupsRepo     *repository.RollupsRepository
	maintenanceRepo *repository.MaintenanceRepository
	alertsRepo      *repository.AlertsRepository
	securityRepo    *repository.SecurityRepository

	cacheManager *consumer.CacheManager
	doorConsumer *consumer.DoorConsumer
	doorMu       sync.Mutex
	doorMonitors map[string]*doorwatch.Monitor
	scheduler    doorwatch.Scheduler

	pipeline  *aggregation.Pipeline
	evaluator *evaluator.ThresholdEvaluator

	securitySettings models.SecuritySettings
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(cfg *config.Config, logger *zap.Logger) (*AnalyticsService, error) {
	// 1. 连接数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 2. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. Repository 层
	readingsRepo := repository.NewReadingsRepository(db, logger)
	rollupsRepo := repository.NewRollupsRepository(db, logger)
	maintenanceRepo := repository.NewMaintenanceRepository(db, logger)
	alertsRepo := repository.NewAlertsRepository(db, logger)
	securityRepo := repository.NewSecurityRepository(db, logger)

	// 4. 缓存层
	kv := consumer.NewRedisKVStore(redisClient)
	cacheManager := consumer.NewCacheManager(cfg, kv, logger)
	if err := cacheManager.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to init cache manager: %w", err)
	}

	// 5. 分析层
	pipeline := aggregation.NewPipeline(readingsRepo, rollupsRepo, logger)
	thresholdEvaluator := evaluator.NewThresholdEvaluator(cfg, pipeline, readingsRepo, alertsRepo, logger)

	// 6. 门禁配置
	settings, err := securityRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load security settings: %w", err)
	}

	s := &AnalyticsService{
		config:           cfg,
		db:               db,
		redisClient:      redisClient,
		logger:           logger,
		readingsRepo:     readingsRepo,
		rollupsRepo:      rollupsRepo,
		maintenanceRepo:  maintenanceRepo,
		alertsRepo:       alertsRepo,
		securityRepo:     securityRepo,
		cacheManager:     cacheManager,
		doorMonitors:     make(map[string]*doorwatch.Monitor),
		scheduler:        doorwatch.NewTickerScheduler(),
		pipeline:         pipeline,
		evaluator:        thresholdEvaluator,
		securitySettings: settings,
	}

	// 7. 门磁事件消费者（可选）
	if cfg.MQTT.Enabled {
		doorConsumer, err := consumer.NewDoorConsumer(&cfg.MQTT, s.handleDoorEvent, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create door consumer: %w", err)
		}
		s.doorConsumer = doorConsumer
	}

	return s, nil
}

// Start 启动服务：门磁订阅 + 阈值评估轮询
func (s *AnalyticsService) Start(ctx context.Context) error {
	s.logger.Info("Starting analytics service",
		zap.String("report_timezone", s.config.Analytics.ReportTimezone),
	)

	if s.doorConsumer != nil {
		if err := s.doorConsumer.Start(); err != nil {
			return fmt.Errorf("failed to start door consumer: %w", err)
		}
	}

	return s.evaluator.Run(ctx)
}

// Stop 停止服务并释放资源
func (s *AnalyticsService) Stop() error {
	s.logger.Info("Stopping analytics service")

	if s.doorConsumer != nil {
		s.doorConsumer.Stop()
	}
	s.doorMu.Lock()
	for _, mon := range s.doorMonitors {
		mon.Stop()
	}
	s.doorMu.Unlock()

	if err := s.cacheManager.Clear(context.Background()); err != nil {
		s.logger.Error("Failed to clear derived caches",
			zap.Error(err),
		)
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}
	return nil
}

// handleDoorEvent 门磁事件入口：按 door_id 懒加载状态机并分发
func (s *AnalyticsService) handleDoorEvent(ev models.DoorEvent, now time.Time) {
	s.doorMu.Lock()
	defer s.doorMu.Unlock()

	mon, ok := s.doorMonitors[ev.DoorID]
	if !ok {
		machine := doorwatch.NewStateMachine(ev.DoorID, s.securitySettings, s.config.ReportLocation())
		mon = doorwatch.NewMonitor(machine, s.scheduler, func(status models.DoorStatus) {
			if err := s.cacheManager.PublishDoorStatus(context.Background(), status); err != nil {
				s.logger.Error("Failed to publish door status",
					zap.String("door_id", status.DoorID),
					zap.Error(err),
				)
			}
		}, s.logger)
		s.doorMonitors[ev.DoorID] = mon
	}
	mon.HandleEvent(ev, now)
}

// DashboardSnapshot 面板快照：图表序列、阈值、可靠性与寿命指标
type DashboardSnapshot struct {
	Location      string               `json:"location"`
	LookbackHours int                  `json:"lookback_hours"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Series        []models.ChartSeries `json:"series"`
	// WeeklySeries 仅 31 天窗口填充：日点折叠成 4 个周均值的粗视图
	WeeklySeries []models.ChartSeries             `json:"weekly_series,omitempty"`
	Thresholds   map[string][]models.Threshold    `json:"thresholds"`
	Reliability  ReliabilityReport                `json:"reliability"`
	Longevity    LongevityReport                  `json:"longevity"`
	AxisRanges   map[string][2]float64            `json:"axis_ranges"`
	Correlations []reliability.ChannelCorrelation `json:"correlations"`
}

// ReliabilityReport 可靠性指标汇总
type ReliabilityReport struct {
	Uptime    reliability.UptimeReport `json:"uptime"`
	MTTRHours *float64                 `json:"mttr_hours,omitempty"`
	MTBFHours *float64                 `json:"mtbf_hours,omitempty"`
	CostTrend reliability.CostTrend    `json:"cost_trend"`
}

// LongevityReport 寿命指标汇总
type LongevityReport struct {
	DegradationRate       float64                     `json:"degradation_rate"`
	MaintenanceEfficiency float64                     `json:"maintenance_efficiency"`
	CostEfficiency        float64                     `json:"cost_efficiency"`
	RemainingLifeYears    float64                     `json:"remaining_life_years"`
	Components            []longevity.ComponentHealth `json:"components"`
}

// BuildDashboardSnapshot 组装某位置在指定回看窗口下的完整面板数据
// 每次调用都从当前窗口全量重算，不依赖任何先前的派生状态
func (s *AnalyticsService) BuildDashboardSnapshot(ctx context.Context, location string, lookbackHours int, systemAgeYears float64) (*DashboardSnapshot, error) {
	now := time.Now()
	loc := s.config.ReportLocation()
	w := timewindow.Resolve(lookbackHours, now, loc)

	series, err := s.pipeline.BuildSeries(ctx, location, w)
	if err != nil {
		return nil, fmt.Errorf("failed to build series: %w", err)
	}

	snapshot := &DashboardSnapshot{
		Location:      location,
		LookbackHours: w.LookbackHours,
		GeneratedAt:   now,
		Thresholds:    make(map[string][]models.Threshold),
		AxisRanges:    make(map[string][2]float64),
	}

	var weekly []aggregation.SeriesPoint
	if w.Resolution == timewindow.ResolutionDayWeekly {
		weekly = aggregation.CollapseWeekly(series)
	}

	for _, desc := range channels.All() {
		snapshot.Series = append(snapshot.Series, aggregation.ChartSeries(series, desc.ID))
		if weekly != nil {
			snapshot.WeeklySeries = append(snapshot.WeeklySeries, aggregation.ChartSeries(weekly, desc.ID))
		}

		values := aggregation.ChannelValues(series, desc.ID)
		bands := threshold.Compute(values, desc, s.config.Analytics.SigmaMultiplier)
		snapshot.Thresholds[desc.ID] = bands.Thresholds(desc)
		snapshot.AxisRanges[desc.ID] = [2]float64{bands.AxisMin, bands.AxisMax}
	}

	readings, err := s.readingsRepo.FetchReadings(ctx, location, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch window readings: %w", err)
	}
	// 成本趋势要对比紧邻的前一等长窗口，任务与报警一次取两个窗口
	prevStart := w.Start.Add(-w.End.Sub(w.Start))
	allTasks, err := s.maintenanceRepo.ListTasks(ctx, prevStart, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance tasks: %w", err)
	}
	allEvents, err := s.alertsRepo.ListEvents(ctx, prevStart, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert events: %w", err)
	}

	// 成本趋势以外的指标只看当前窗口
	tasks := tasksCreatedSince(allTasks, w.Start)
	events := eventsCreatedSince(allEvents, w.Start)

	timestamps := make([]time.Time, 0, len(readings))
	for _, r := range readings {
		timestamps = append(timestamps, r.RecordedAt)
	}

	snapshot.Reliability = ReliabilityReport{
		Uptime:    reliability.Uptime(timestamps, float64(w.LookbackHours), reliability.DefaultGapTolerance, now),
		MTTRHours: reliability.MTTR(tasks),
		MTBFHours: reliability.MTBF(events),
		CostTrend: reliability.ComputeCostTrend(allTasks, allEvents, w.Start, w.End),
	}
	snapshot.Correlations = reliability.CorrelateFailures(readings, events, loc)

	// 退化率需要跨月历史，用过去一年的读数而不是当前窗口
	history, err := s.readingsRepo.FetchReadings(ctx, location, now.AddDate(-1, 0, 0), now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch degradation history: %w", err)
	}

	degradation := longevity.DegradationRate(history, loc)
	maintEff := longevity.MaintenanceEfficiency(readings, tasks)
	meanAnomaly, meanQuality := longevity.MeanScores(readings)
	snapshot.Longevity = LongevityReport{
		DegradationRate:       degradation,
		MaintenanceEfficiency: maintEff,
		CostEfficiency:        longevity.CostEfficiency(tasks),
		RemainingLifeYears: longevity.RemainingLife(longevity.LifeInputs{
			AgeYears:              systemAgeYears,
			ExpectedLifespanYears: s.config.Analytics.ExpectedLifespanYears,
			MeanAnomaly:           meanAnomaly,
			MeanQuality:           meanQuality,
			DegradationRate:       degradation,
			MaintenanceEfficiency: maintEff,
		}),
		Components: longevity.ComponentHealthScores(readings, events),
	}

	return snapshot, nil
}

// tasksCreatedSince 过滤出 from 之后创建的任务
func tasksCreatedSince(tasks []models.MaintenanceTask, from time.Time) []models.MaintenanceTask {
	out := make([]models.MaintenanceTask, 0, len(tasks))
	for _, t := range tasks {
		if !t.CreatedAt.Before(from) {
			out = append(out, t)
		}
	}
	return out
}

// eventsCreatedSince 过滤出 from 之后创建的报警事件
func eventsCreatedSince(events []models.AlertEvent, from time.Time) []models.AlertEvent {
	out := make([]models.AlertEvent, 0, len(events))
	for _, e := range events {
		if !e.CreatedAt.Before(from) {
			out = append(out, e)
		}
	}
	return out
}

// DoorStatus 读取某扇门的当前安全状态（无事件历史时视为 SECURE）
func (s *AnalyticsService) DoorStatus(ctx context.Context, doorID string) (models.DoorStatus, error) {
	status, err := s.cacheManager.GetDoorStatus(ctx, doorID)
	if err != nil {
		return models.DoorStatus{}, err
	}
	if status == nil {
		return models.DoorStatus{
			DoorID: doorID,
			State:  models.DoorSecure,
		}, nil
	}
	return *status, nil
}
