package threshold

import (
	"fmt"

	"plantwatch-analytics/internal/channels"
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"
)

// DefaultSigmaMultiplier critical 带的默认 σ 倍数
const DefaultSigmaMultiplier = 3.0

// 图表坐标轴在参考带外侧的留白比例，防止曲线贴边
const axisMarginFraction = 0.10

// Band 单个阈值带，单侧通道的 Low 为 nil
type Band struct {
	Low  *float64
	High *float64
}

// Bands 某通道在当前窗口内的全部派生阈值
// 纯函数产物：窗口或数据变化时整体重算，绝不增量更新
type Bands struct {
	Channel     string
	Mean        float64
	StdDev      float64
	SampleCount int
	// FromDefaults 样本不足 2 个时为 true，此时各带取通道固定默认值
	FromDefaults bool

	Warning  Band
	Critical Band
	Optimal  Band

	AxisMin float64
	AxisMax float64
}

// Compute 从当前窗口的非 nil 样本推导阈值带
// warning = μ±2σ，critical = μ±kσ，optimal = μ±σ；σ=0 时各带收缩到 μ
func Compute(values []float64, desc channels.Descriptor, k float64) Bands {
	if k <= 0 {
		k = DefaultSigmaMultiplier
	}

	if len(values) < 2 {
		return defaultBands(values, desc)
	}

	mean := *stats.Mean(values)
	sd := *stats.PopStdDev(values)

	b := Bands{
		Channel:     desc.ID,
		Mean:        mean,
		StdDev:      sd,
		SampleCount: len(values),
		Warning:     band(mean, 2*sd, desc.Directionality),
		Critical:    band(mean, k*sd, desc.Directionality),
		Optimal:     band(mean, sd, desc.Directionality),
	}

	observedMin, observedMax := values[0], values[0]
	for _, v := range values[1:] {
		if v < observedMin {
			observedMin = v
		}
		if v > observedMax {
			observedMax = v
		}
	}

	axisMin := observedMin
	if b.Optimal.Low != nil && *b.Optimal.Low < axisMin {
		axisMin = *b.Optimal.Low
	}
	axisMax := observedMax
	if b.Optimal.High != nil && *b.Optimal.High > axisMax {
		axisMax = *b.Optimal.High
	}

	margin := (axisMax - axisMin) * axisMarginFraction
	b.AxisMin = axisMin - margin
	b.AxisMax = axisMax + margin
	return b
}

// band 构造 μ±delta 的阈值带，单侧上限通道只给 High
func band(mean, delta float64, dir channels.Directionality) Band {
	high := mean + delta
	if dir == channels.OneSidedHigh {
		return Band{High: &high}
	}
	low := mean - delta
	return Band{Low: &low, High: &high}
}

// defaultBands 样本不足时返回通道固定默认带，不尝试统计计算
func defaultBands(values []float64, desc channels.Descriptor) Bands {
	d := desc.Defaults
	b := Bands{
		Channel:      desc.ID,
		SampleCount:  len(values),
		FromDefaults: true,
	}
	if len(values) == 1 {
		b.Mean = values[0]
	}

	if desc.Directionality == channels.OneSidedHigh {
		b.Warning = Band{High: ptr(d.WarningHigh)}
		b.Critical = Band{High: ptr(d.CriticalHigh)}
		b.Optimal = Band{High: ptr(d.OptimalHigh)}
		b.AxisMin = 0
		b.AxisMax = d.CriticalHigh * (1 + axisMarginFraction)
		return b
	}

	b.Warning = Band{Low: ptr(d.WarningLow), High: ptr(d.WarningHigh)}
	b.Critical = Band{Low: ptr(d.CriticalLow), High: ptr(d.CriticalHigh)}
	b.Optimal = Band{Low: ptr(d.OptimalLow), High: ptr(d.OptimalHigh)}
	margin := (d.CriticalHigh - d.CriticalLow) * axisMarginFraction
	b.AxisMin = d.CriticalLow - margin
	b.AxisMax = d.CriticalHigh + margin
	return b
}

// Thresholds 展开为面板用的阈值列表
func (b Bands) Thresholds(desc channels.Descriptor) []models.Threshold {
	var out []models.Threshold
	add := func(kind string, band Band, name string) {
		if band.Low != nil {
			out = append(out, models.Threshold{
				Channel: b.Channel,
				Kind:    kind,
				Value:   *band.Low,
				Label:   fmt.Sprintf("%s low (%s)", name, desc.Unit),
			})
		}
		if band.High != nil {
			out = append(out, models.Threshold{
				Channel: b.Channel,
				Kind:    kind,
				Value:   *band.High,
				Label:   fmt.Sprintf("%s high (%s)", name, desc.Unit),
			})
		}
	}
	add(models.ThresholdWarning, b.Warning, "Warning")
	add(models.ThresholdCritical, b.Critical, "Critical")
	if b.Optimal.Low != nil {
		out = append(out, models.Threshold{
			Channel: b.Channel,
			Kind:    models.ThresholdOptimalMin,
			Value:   *b.Optimal.Low,
			Label:   fmt.Sprintf("Optimal min (%s)", desc.Unit),
		})
	}
	if b.Optimal.High != nil {
		out = append(out, models.Threshold{
			Channel: b.Channel,
			Kind:    models.ThresholdOptimalMax,
			Value:   *b.Optimal.High,
			Label:   fmt.Sprintf("Optimal max (%s)", desc.Unit),
		})
	}
	return out
}

// Exceeds 判断取值越过了哪一级阈值，返回越过的阈值边界
// 返回 (severity, 边界值, true)；未越界返回 false
func (b Bands) Exceeds(value float64) (string, float64, bool) {
	if b.Critical.High != nil && value >= *b.Critical.High {
		return models.SeverityCritical, *b.Critical.High, true
	}
	if b.Critical.Low != nil && value <= *b.Critical.Low {
		return models.SeverityCritical, *b.Critical.Low, true
	}
	if b.Warning.High != nil && value >= *b.Warning.High {
		return models.SeverityHigh, *b.Warning.High, true
	}
	if b.Warning.Low != nil && value <= *b.Warning.Low {
		return models.SeverityHigh, *b.Warning.Low, true
	}
	return "", 0, false
}

func ptr(v float64) *float64 {
	return &v
}
