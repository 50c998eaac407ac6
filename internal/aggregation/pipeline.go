package aggregation

import (
	"context"
	"fmt"
	"time"

	"plantwatch-analytics/internal/channels"
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"
	"plantwatch-analytics/internal/timewindow"

	"go.uber.org/zap"
)

// 周/月视图 rollup 覆盖率下限：7 天中不足 4 天有 rollup 时放弃 rollup，
// 改用原始数据按本地日历日重新分组
const minRollupCoverage = 4

// ReadingSource 原始读数来源（按时间升序返回）
type ReadingSource interface {
	FetchReadings(ctx context.Context, location string, from, to time.Time) ([]models.SensorReading, error)
}

// RollupSource 预聚合数据来源（上游 rollup 作业的产出，只读）
type RollupSource interface {
	FetchRollups(ctx context.Context, location, level string, from, to time.Time) ([]models.AggregatedBucket, error)
}

// SeriesPoint 聚合后的序列点
// Values 中 nil 表示该桶该通道无样本（回填哨兵值，与真实 0 可区分）
type SeriesPoint struct {
	Bucket      time.Time
	Label       string
	Values      map[string]*float64
	SampleCount int
}

// Pipeline 聚合管线：取数 → 分桶 → 回填 → 降采样
type Pipeline struct {
	readings ReadingSource
	rollups  RollupSource
	logger   *zap.Logger
}

// NewPipeline 创建聚合管线
func NewPipeline(readings ReadingSource, rollups RollupSource, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		readings: readings,
		rollups:  rollups,
		logger:   logger,
	}
}

// BuildSeries 构建窗口内的完整序列
// 输出长度恒等于窗口的预期桶数：缺数据的桶显式回填哨兵值，绝不静默丢弃
func (p *Pipeline) BuildSeries(ctx context.Context, location string, w timewindow.Window) ([]SeriesPoint, error) {
	switch w.Resolution {
	case timewindow.ResolutionMinute, timewindow.ResolutionHour:
		return p.buildRawSeries(ctx, location, w)
	default:
		return p.buildDailySeries(ctx, location, w)
	}
}

// buildRawSeries ≤24h 视图：原始读数按本地分钟/小时分桶后降采样
func (p *Pipeline) buildRawSeries(ctx context.Context, location string, w timewindow.Window) ([]SeriesPoint, error) {
	readings, err := p.readings.FetchReadings(ctx, location, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readings: %w", err)
	}

	grouped := groupByBucket(readings, w)
	series := backfill(grouped, w)
	return Downsample(series, w.MaxPoints), nil
}

// buildDailySeries 周/月视图：优先用日级 rollup，覆盖率不足则回退原始数据
func (p *Pipeline) buildDailySeries(ctx context.Context, location string, w timewindow.Window) ([]SeriesPoint, error) {
	grouped, ok := p.rollupDaily(ctx, location, w)
	if !ok {
		readings, err := p.readings.FetchReadings(ctx, location, w.Start, w.End)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch readings for daily fallback: %w", err)
		}
		grouped = groupByBucket(readings, w)
	}

	return backfill(grouped, w), nil
}

// rollupDaily 取日级 rollup 并检查覆盖率，不足或取数失败都视为未覆盖
func (p *Pipeline) rollupDaily(ctx context.Context, location string, w timewindow.Window) (map[time.Time]SeriesPoint, bool) {
	buckets, err := p.rollups.FetchRollups(ctx, location, models.AggregationDay, w.Start, w.End)
	if err != nil {
		// 取数失败等同于覆盖不足：走原始数据回退，不重试
		p.logger.Warn("Rollup fetch failed, falling back to raw readings",
			zap.String("location", location),
			zap.Error(err),
		)
		return nil, false
	}

	grouped := make(map[time.Time]SeriesPoint, len(buckets))
	for _, b := range buckets {
		key := w.BucketKey(b.TimeBucket)
		values := make(map[string]*float64, len(channels.IDs()))
		for _, id := range channels.IDs() {
			values[id] = b.Average(id)
		}
		grouped[key] = SeriesPoint{
			Bucket:      key,
			Label:       w.BucketLabel(key),
			Values:      values,
			SampleCount: b.SampleCount,
		}
	}

	required := minRollupCoverage
	if w.LookbackHours == timewindow.LookbackMonth {
		// 31 天窗口按同等比例要求覆盖
		required = minRollupCoverage * 31 / 7
	}
	if len(grouped) < required {
		p.logger.Info("Rollup coverage below threshold, falling back to raw readings",
			zap.String("location", location),
			zap.Int("covered_days", len(grouped)),
			zap.Int("required_days", required),
		)
		return nil, false
	}
	return grouped, true
}

// groupByBucket 按窗口分辨率分桶；每桶每通道只对非 nil 样本求均值
func groupByBucket(readings []models.SensorReading, w timewindow.Window) map[time.Time]SeriesPoint {
	type accumulator struct {
		sums   map[string]float64
		counts map[string]int
		total  int
	}

	acc := make(map[time.Time]*accumulator)
	for _, r := range readings {
		key := w.BucketKey(r.RecordedAt)
		a, ok := acc[key]
		if !ok {
			a = &accumulator{
				sums:   make(map[string]float64),
				counts: make(map[string]int),
			}
			acc[key] = a
		}
		a.total++
		for _, id := range channels.IDs() {
			if v := r.Channel(id); v != nil {
				a.sums[id] += *v
				a.counts[id]++
			}
		}
	}

	grouped := make(map[time.Time]SeriesPoint, len(acc))
	for key, a := range acc {
		values := make(map[string]*float64, len(channels.IDs()))
		for _, id := range channels.IDs() {
			if n := a.counts[id]; n > 0 {
				mean := a.sums[id] / float64(n)
				values[id] = &mean
			} else {
				values[id] = nil
			}
		}
		grouped[key] = SeriesPoint{
			Bucket:      key,
			Label:       w.BucketLabel(key),
			Values:      values,
			SampleCount: a.total,
		}
	}
	return grouped
}

// backfill 生成窗口全部预期桶并左连接已算出的值
// 无样本的桶保留 nil 哨兵，绝不插值或沿用前值
func backfill(grouped map[time.Time]SeriesPoint, w timewindow.Window) []SeriesPoint {
	expected := w.ExpectedBuckets()
	series := make([]SeriesPoint, 0, len(expected))
	for _, bucket := range expected {
		if point, ok := grouped[bucket]; ok {
			series = append(series, point)
			continue
		}
		values := make(map[string]*float64, len(channels.IDs()))
		for _, id := range channels.IDs() {
			values[id] = nil
		}
		series = append(series, SeriesPoint{
			Bucket: bucket,
			Label:  w.BucketLabel(bucket),
			Values: values,
		})
	}
	return series
}

// Downsample 步进降采样：step = ceil(n/maxPoints)，每 step 个取一个，
// 并无条件保留最后一个点（最新读数不能丢）
func Downsample(series []SeriesPoint, maxPoints int) []SeriesPoint {
	n := len(series)
	if maxPoints <= 0 || n <= maxPoints {
		return series
	}

	step := (n + maxPoints - 1) / maxPoints
	out := make([]SeriesPoint, 0, maxPoints+1)
	for i := 0; i < n; i += step {
		out = append(out, series[i])
	}
	if last := series[n-1]; len(out) == 0 || !out[len(out)-1].Bucket.Equal(last.Bucket) {
		out = append(out, last)
	}
	return out
}

// CollapseWeekly 将 31 个日点折叠为 4 个周均值（从最近一天向前数固定 7 天窗口，
// 最旧的窗口吸收多出的 3 天）；nil 日不参与均值
func CollapseWeekly(daily []SeriesPoint) []SeriesPoint {
	n := len(daily)
	if n == 0 {
		return nil
	}

	const weeks = 4
	out := make([]SeriesPoint, 0, weeks)
	end := n
	for week := 0; week < weeks && end > 0; week++ {
		start := end - 7
		// 最旧的一组取剩余全部天数
		if week == weeks-1 || start < 0 {
			start = 0
		}
		chunk := daily[start:end]

		values := make(map[string]*float64, len(channels.IDs()))
		total := 0
		for _, id := range channels.IDs() {
			ptrs := make([]*float64, 0, len(chunk))
			for _, p := range chunk {
				ptrs = append(ptrs, p.Values[id])
			}
			values[id] = stats.Mean(stats.Collect(ptrs))
		}
		for _, p := range chunk {
			total += p.SampleCount
		}

		out = append(out, SeriesPoint{
			Bucket:      chunk[0].Bucket,
			Label:       chunk[0].Label,
			Values:      values,
			SampleCount: total,
		})
		end = start
	}

	// 按时间升序输出
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ChartSeries 从聚合序列提取单通道图表序列
func ChartSeries(series []SeriesPoint, channelID string) models.ChartSeries {
	desc, _ := channels.Get(channelID)
	points := make([]models.ChartPoint, 0, len(series))
	for _, p := range series {
		points = append(points, models.ChartPoint{
			Label:     p.Label,
			Timestamp: p.Bucket,
			Value:     p.Values[channelID],
		})
	}
	return models.ChartSeries{
		Channel: channelID,
		Unit:    desc.Unit,
		Points:  points,
	}
}

// ChannelValues 提取单通道的非 nil 样本（阈值/统计计算的输入）
func ChannelValues(series []SeriesPoint, channelID string) []float64 {
	ptrs := make([]*float64, 0, len(series))
	for _, p := range series {
		ptrs = append(ptrs, p.Values[channelID])
	}
	return stats.Collect(ptrs)
}
