package longevity

import (
	"strings"

	"plantwatch-analytics/internal/channels"
	"plantwatch-analytics/internal/models"
	"plantwatch-analytics/internal/stats"
)

// 部件健康评分参数
const (
	componentBaseScore = 100.0
	alertPenalty       = 5.0  // 每条关联的 critical/high 报警
	stressPenalty      = 10.0 // 每个检出的环境应力条件
)

// 环境应力判定带
const (
	stressTempLow   = 5.0  // °C
	stressTempHigh  = 35.0 // °C
	stressVibration = 2.5  // m/s²，平均振动幅值上限
)

// ComponentHealth 单个部件的健康评分
type ComponentHealth struct {
	Component string   `json:"component"`
	Score     float64  `json:"score"`
	Alerts    int      `json:"related_alerts"`
	Stresses  []string `json:"stress_conditions,omitempty"`
}

// ComponentHealthScores 计算各部件健康分 [0,100]
// 基础分减去关联报警罚分（部件 ↔ 通道关键字映射来自通道注册表）
// 和环境应力罚分（平均温度越带、平均振动幅值越带）
func ComponentHealthScores(recent []models.SensorReading, events []models.AlertEvent) []ComponentHealth {
	// 部件 → 关联通道集合
	componentChannels := make(map[string][]channels.Descriptor)
	for _, desc := range channels.All() {
		if desc.Component == "" {
			continue
		}
		componentChannels[desc.Component] = append(componentChannels[desc.Component], desc)
	}

	stressConditions := detectStress(recent)

	var out []ComponentHealth
	for _, component := range componentOrder(componentChannels) {
		descs := componentChannels[component]

		related := 0
		for _, e := range events {
			if e.Severity != models.SeverityCritical && e.Severity != models.SeverityHigh {
				continue
			}
			for _, desc := range descs {
				if matchesChannel(e.SensorType, desc) {
					related++
					break
				}
			}
		}

		var stresses []string
		for _, s := range stressConditions {
			for _, desc := range descs {
				if s.channel == desc.ID {
					stresses = append(stresses, s.name)
					break
				}
			}
		}

		score := componentBaseScore - float64(related)*alertPenalty - float64(len(stresses))*stressPenalty
		out = append(out, ComponentHealth{
			Component: component,
			Score:     stats.Clamp(score, 0, 100),
			Alerts:    related,
			Stresses:  stresses,
		})
	}
	return out
}

type stressCondition struct {
	channel string
	name    string
}

// detectStress 从近期读数均值检出环境应力条件
func detectStress(recent []models.SensorReading) []stressCondition {
	temp := make([]*float64, 0, len(recent))
	vib := make([]*float64, 0, len(recent))
	for i := range recent {
		temp = append(temp, recent[i].Temperature)
		vib = append(vib, recent[i].AccelMag)
	}

	var out []stressCondition
	if m := stats.Mean(stats.Collect(temp)); m != nil {
		if *m > stressTempHigh {
			out = append(out, stressCondition{channel: "temperature", name: "high ambient temperature"})
		} else if *m < stressTempLow {
			out = append(out, stressCondition{channel: "temperature", name: "low ambient temperature"})
		}
	}
	if m := stats.Mean(stats.Collect(vib)); m != nil && *m > stressVibration {
		out = append(out, stressCondition{channel: "accel_mag", name: "sustained vibration"})
	}
	return out
}

// matchesChannel 报警 sensor_type 与通道的关键字匹配
func matchesChannel(sensorType string, desc channels.Descriptor) bool {
	st := strings.ToLower(sensorType)
	return st == desc.ID || strings.Contains(st, desc.ID) || strings.Contains(desc.ID, st)
}

// componentOrder 固定的部件输出顺序（map 遍历无序，面板需要稳定排序）
func componentOrder(componentChannels map[string][]channels.Descriptor) []string {
	known := []string{"cooling_unit", "air_filter", "bearing", "mounting", "gas_sensor", "enclosure_seal"}
	var out []string
	for _, c := range known {
		if _, ok := componentChannels[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
