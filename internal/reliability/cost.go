package reliability

import (
	"time"

	"plantwatch-analytics/internal/models"
)

// CostTrend 成本趋势：当前窗口 vs 紧邻的等长前一窗口
// ChangePercent 在前一窗口成本为 0 时为 nil（不适用，避免除零）
type CostTrend struct {
	CurrentCost   float64  `json:"current_cost"`
	PreviousCost  float64  `json:"previous_cost"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
}

// ComputeCostTrend 汇总维护任务与报警关联成本的两窗口对比
func ComputeCostTrend(tasks []models.MaintenanceTask, events []models.AlertEvent, windowStart, windowEnd time.Time) CostTrend {
	length := windowEnd.Sub(windowStart)
	prevStart := windowStart.Add(-length)

	sumWindow := func(from, to time.Time) float64 {
		total := 0.0
		for _, t := range tasks {
			if !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
				total += t.TotalCost()
			}
		}
		for _, e := range events {
			if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
				total += e.Cost
			}
		}
		return total
	}

	trend := CostTrend{
		CurrentCost:  sumWindow(windowStart, windowEnd),
		PreviousCost: sumWindow(prevStart, windowStart),
	}
	if trend.PreviousCost != 0 {
		pct := (trend.CurrentCost - trend.PreviousCost) / trend.PreviousCost * 100
		trend.ChangePercent = &pct
	}
	return trend
}
