package longevity

import (
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"
)

// 传感器健康子分数的夹取区间
const (
	sensorScoreFloor   = 25.0
	sensorScoreCeiling = 95.0
)

// anomalyRateThreshold 读数异常分超过该值计入异常率
const anomalyRateThreshold = 0.5

// MaintenanceEfficiency 维护效率评分 [0,100]
// 传感器健康子分数（近期异常率 + 平均质量代理）与按期完成率加权混合；
// 任务历史越多，权重越向完成率倾斜（无任务历史时只看传感器子分数）
func MaintenanceEfficiency(recent []models.SensorReading, tasks []models.MaintenanceTask) float64 {
	sensorScore := sensorHealthScore(recent)

	completed := 0
	onTime := 0
	for _, t := range tasks {
		if t.CompletedAt == nil {
			continue
		}
		completed++
		if t.CompletedOnTime() {
			onTime++
		}
	}
	if completed == 0 {
		return stats.Round1(sensorScore)
	}

	taskRatio := float64(onTime) / float64(completed) * 100
	// 权重随任务数增长，上限 0.7
	taskWeight := float64(completed) * 0.07
	if taskWeight > 0.7 {
		taskWeight = 0.7
	}
	blended := sensorScore*(1-taskWeight) + taskRatio*taskWeight
	return stats.Round1(stats.Clamp(blended, 0, 100))
}

// sensorHealthScore 传感器健康子分数，夹在 [25,95]
func sensorHealthScore(recent []models.SensorReading) float64 {
	if len(recent) == 0 {
		return sensorScoreFloor
	}

	anomalous := 0
	qualities := make([]float64, 0, len(recent))
	for _, r := range recent {
		if r.AnomalyScore != nil && *r.AnomalyScore > anomalyRateThreshold {
			anomalous++
		}
		if q := r.QualityProxy(); q != nil {
			qualities = append(qualities, *q)
		}
	}

	anomalyRate := float64(anomalous) / float64(len(recent))
	meanQuality := 75.0 // 无质量代理时的中性假设
	if m := stats.Mean(qualities); m != nil {
		meanQuality = *m
	}

	// 异常率每上升 1% 扣 0.5 分
	score := meanQuality - anomalyRate*50
	return stats.Clamp(score, sensorScoreFloor, sensorScoreCeiling)
}

// CostEfficiency 成本效率评分 [0,100]：预防性/例行任务占比越高越好
// 无任务历史返回中性分 50
func CostEfficiency(tasks []models.MaintenanceTask) float64 {
	if len(tasks) == 0 {
		return 50
	}
	preventive := 0
	for _, t := range tasks {
		if t.TaskType == "preventive" || t.TaskType == "routine" {
			preventive++
		}
	}
	ratio := float64(preventive) / float64(len(tasks))
	return stats.Round1(stats.Clamp(ratio*100, 0, 100))
}
