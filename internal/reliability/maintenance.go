package reliability

import (
	"sort"

	"plantwatch-analytics/internal/models"
)

// MTTR 平均修复时间（小时）：completed_at - created_at 的均值
// 只统计有完成时间的任务；无合格任务返回 nil（不适用）
func MTTR(tasks []models.MaintenanceTask) *float64 {
	var sum float64
	count := 0
	for _, t := range tasks {
		if t.CompletedAt == nil {
			continue
		}
		sum += t.CompletedAt.Sub(t.CreatedAt).Hours()
		count++
	}
	if count == 0 {
		return nil
	}
	m := sum / float64(count)
	return &m
}

// MTBF 平均故障间隔（小时）
// 先筛选出现过的最高严重级别（同级再按 priority=high 收紧），按 created_at 升序
// 取相邻间隔的均值；合格事件 <2 时返回 nil（不适用）
func MTBF(events []models.AlertEvent) *float64 {
	qualifying := filterHighestSeverity(events)
	if len(qualifying) < 2 {
		return nil
	}

	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].CreatedAt.Before(qualifying[j].CreatedAt)
	})

	var sum float64
	for i := 1; i < len(qualifying); i++ {
		sum += qualifying[i].CreatedAt.Sub(qualifying[i-1].CreatedAt).Hours()
	}
	m := sum / float64(len(qualifying)-1)
	return &m
}

// filterHighestSeverity 取最高严重级别/优先级组合的事件
// 级别排序：severity 为主，priority=high 在同级中更高
func filterHighestSeverity(events []models.AlertEvent) []models.AlertEvent {
	rank := func(e models.AlertEvent) int {
		r := models.SeverityRank(e.Severity) * 2
		if e.Priority == "high" {
			r++
		}
		return r
	}

	maxRank := 0
	for _, e := range events {
		if r := rank(e); r > maxRank {
			maxRank = r
		}
	}
	if maxRank == 0 {
		return nil
	}

	var out []models.AlertEvent
	for _, e := range events {
		if rank(e) == maxRank {
			out = append(out, e)
		}
	}
	return out
}
