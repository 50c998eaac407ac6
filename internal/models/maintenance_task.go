package models

import (
	"time"
)

// 维护任务状态
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

// MaintenanceTask 维护任务（对应 maintenance_tasks 表）
type MaintenanceTask struct {
	TaskID      string     `json:"task_id" db:"task_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DueDate     time.Time  `json:"due_date" db:"due_date"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status      string     `json:"status" db:"status"`
	TaskType    string     `json:"task_type" db:"task_type"` // preventive, routine, corrective, emergency
	LaborCost   float64    `json:"labor_cost" db:"labor_cost"`
	PartsCost   float64    `json:"parts_cost" db:"parts_cost"`
}

// TotalCost 任务总成本
func (t *MaintenanceTask) TotalCost() float64 {
	return t.LaborCost + t.PartsCost
}

// CompletedOnTime 是否按期完成（未完成的任务返回 false）
func (t *MaintenanceTask) CompletedOnTime() bool {
	if t.CompletedAt == nil {
		return false
	}
	return !t.CompletedAt.After(t.DueDate)
}
