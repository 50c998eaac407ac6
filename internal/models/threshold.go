package models

// 阈值类型
const (
	ThresholdWarning    = "warning"
	ThresholdCritical   = "critical"
	ThresholdOptimalMin = "optimal-min"
	ThresholdOptimalMax = "optimal-max"
)

// Threshold 派生阈值（每次请求重新计算，不落库）
type Threshold struct {
	Channel string  `json:"channel"`
	Kind    string  `json:"kind"`
	Value   float64 `json:"value"`
	Label   string  `json:"label"`
}
