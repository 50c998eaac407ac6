package longevity

import (
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"
)

// youngSystemAgeYears 低于该系统年龄走"新系统"分支：
// 新系统没有可评估的维护历史，维护效率刻意不参与预测
const youngSystemAgeYears = 0.5

// minRemainingLifeYears 年龄未到预期寿命时预测值的正下限（绝不精确为 0）
const minRemainingLifeYears = 0.1

// LifeInputs 剩余寿命预测输入
type LifeInputs struct {
	AgeYears              float64
	ExpectedLifespanYears float64
	// MeanAnomaly / MeanQuality 来自近期读数（质量缺失时已按回退公式折算）
	MeanAnomaly           float64
	MeanQuality           float64
	DegradationRate       float64 // %/年，已夹取
	MaintenanceEfficiency float64 // [0,100]
}

// RemainingLife 预测剩余寿命（年，保留一位小数）
// 年龄 <0.5 年：按异常/质量修正；年龄 ≥0.5 年：按退化率/维护效率修正
func RemainingLife(in LifeInputs) float64 {
	base := in.ExpectedLifespanYears - in.AgeYears
	if base <= 0 {
		return 0
	}

	var predicted float64
	if in.AgeYears < youngSystemAgeYears {
		anomalyAdj := 1 - in.MeanAnomaly*0.3
		if anomalyAdj < 0.7 {
			anomalyAdj = 0.7
		}
		qualityAdj := in.MeanQuality / 100
		if qualityAdj < 0.8 {
			qualityAdj = 0.8
		}
		predicted = base * anomalyAdj * qualityAdj
	} else {
		degradationAdj := (5 - in.DegradationRate) / 5
		maintAdj := in.MaintenanceEfficiency / 100
		if maintAdj < 0.3 {
			maintAdj = 0.3
		}
		predicted = base * degradationAdj * maintAdj
	}

	if predicted < minRemainingLifeYears {
		predicted = minRemainingLifeYears
	}
	return stats.Round1(predicted)
}

// MeanScores 近期读数的平均异常分与平均质量代理
// 读数为空时返回中性值（异常 0，质量 75）
func MeanScores(recent []models.SensorReading) (meanAnomaly, meanQuality float64) {
	anomalies := make([]float64, 0, len(recent))
	qualities := make([]float64, 0, len(recent))
	for _, r := range recent {
		if r.AnomalyScore != nil {
			anomalies = append(anomalies, *r.AnomalyScore)
		}
		if q := r.QualityProxy(); q != nil {
			qualities = append(qualities, *q)
		}
	}

	meanAnomaly = 0
	if m := stats.Mean(anomalies); m != nil {
		meanAnomaly = *m
	}
	meanQuality = 75
	if m := stats.Mean(qualities); m != nil {
		meanQuality = *m
	}
	return meanAnomaly, meanQuality
}
