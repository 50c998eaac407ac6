package models

import (
	"time"
)

// 门磁事件类型
const (
	DoorActionOpen  = "open"
	DoorActionClose = "close"
)

// 门禁安全状态
const (
	DoorSecure            = "SECURE"             // 门已关闭
	DoorWarning           = "WARNING"            // 门打开，非限制时段，未超时
	DoorOverstayCritical  = "OVERSTAY_CRITICAL"  // 门打开，非限制时段，超过最大开门时长
	DoorIntrusionCritical = "INTRUSION_CRITICAL" // 限制时段内开门，任何时长都算入侵
)

// SecuritySettings 门禁安全配置（对应 security_settings 表）
// NightModeStart/End 为报告时区的本地时刻（"HH:MM"），允许跨午夜
type SecuritySettings struct {
	NightModeStart         string `json:"night_mode_start" db:"night_mode_start"`
	NightModeEnd           string `json:"night_mode_end" db:"night_mode_end"`
	MaxOpenDurationSeconds int    `json:"max_open_duration_seconds" db:"max_open_duration_seconds"`
}

// DoorEvent 门磁事件（来自 MQTT 事件流）
type DoorEvent struct {
	DoorID    string    `json:"door_id"`
	Action    string    `json:"action"` // open / close
	Timestamp time.Time `json:"timestamp"`
}

// DoorStatus 门禁安全状态快照（每次评估完整重建，不做增量更新）
type DoorStatus struct {
	DoorID         string     `json:"door_id"`
	State          string     `json:"state"`
	IsRedAlert     bool       `json:"is_red_alert"`
	IsAmberWarning bool       `json:"is_amber_warning"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	OpenedAt       *time.Time `json:"opened_at,omitempty"`
}
