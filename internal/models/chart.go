package models

import (
	"time"
)

// ChartPoint 图表就绪的数据点
// Value 为 nil 表示该桶无数据（回填哨兵值），前端据此断开折线而不是画 0
type ChartPoint struct {
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Value     *float64  `json:"value"`
}

// ChartSeries 单通道图表序列
type ChartSeries struct {
	Channel string       `json:"channel"`
	Unit    string       `json:"unit"`
	Points  []ChartPoint `json:"points"`
}
