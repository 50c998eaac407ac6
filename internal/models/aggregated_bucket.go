package models

import (
	"time"
)

// 聚合级别（上游 rollup 作业写入，本服务只读）
const (
	AggregationDay   = "day"
	AggregationWeek  = "week"
	AggregationMonth = "month"
)

// AggregatedBucket 预聚合数据桶（对应 sensor_rollups 表）
// 每通道的 avg/min/max 均可空：该桶内通道无样本时为 nil
type AggregatedBucket struct {
	TimeBucket  time.Time `json:"time_bucket" db:"time_bucket"`
	Level       string    `json:"aggregation_level" db:"aggregation_level"`
	Location    string    `json:"location" db:"location"`
	SampleCount int       `json:"sample_count" db:"sample_count"`

	Averages map[string]*float64 `json:"averages"` // 通道 ID → 均值
	Minimums map[string]*float64 `json:"minimums"`
	Maximums map[string]*float64 `json:"maximums"`
}

// Average 按通道取该桶的均值，无样本返回 nil
func (b *AggregatedBucket) Average(channel string) *float64 {
	if b.Averages == nil {
		return nil
	}
	return b.Averages[channel]
}
