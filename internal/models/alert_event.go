package models

import (
	"time"
)

// 报警严重级别（从高到低）
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// 报警状态
const (
	AlertActive       = "active"
	AlertAcknowledged = "acknowledged"
)

// AlertEvent 报警事件（对应 alert_events 表）
// 由阈值评估作业写入，去重规则：24 小时内相同 (sensor_type, location, value, threshold)
// 且仍处于 active 状态的报警不重复写入
type AlertEvent struct {
	EventID        string    `json:"event_id" db:"event_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	Severity       string    `json:"severity" db:"severity"`
	Priority       string    `json:"priority" db:"priority"` // high, normal, low
	SensorType     string    `json:"sensor_type" db:"sensor_type"`
	SensorValue    float64   `json:"sensor_value" db:"sensor_value"`
	ThresholdValue float64   `json:"threshold_value" db:"threshold_value"`
	Location       string    `json:"location" db:"location"`
	Status         string    `json:"status" db:"status"`
	Cost           float64   `json:"cost" db:"cost"`
}

// SeverityRank 严重级别排序值（数值越大越严重）
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}
