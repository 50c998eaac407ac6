package channels

// Directionality 阈值方向性
type Directionality int

const (
	// TwoSided 双侧阈值（温度/湿度/气压：过高过低都异常）
	TwoSided Directionality = iota
	// OneSidedHigh 单侧上限阈值（颗粒物：只有过高异常）
	OneSidedHigh
)

// Defaults 样本不足时的固定默认带（<2 个样本无法计算 σ）
type Defaults struct {
	WarningLow   float64
	WarningHigh  float64
	CriticalLow  float64
	CriticalHigh float64
	OptimalLow   float64
	OptimalHigh  float64
}

// Descriptor 通道描述符：单位、方向性、默认带、关联部件关键字
// 聚合、阈值、展示统一从这里取元数据，不再各自维护 switch
type Descriptor struct {
	ID             string
	DisplayName    string
	Unit           string
	Directionality Directionality
	Defaults       Defaults
	// Component 该通道关联的部件 ID（部件健康评分用），空表示不关联
	Component string
}

// registry 全部通道描述符（与 models.SensorReading 的通道一一对应）
var registry = map[string]Descriptor{
	"temperature": {
		ID: "temperature", DisplayName: "Temperature", Unit: "°C",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: 10, WarningHigh: 35, CriticalLow: 0, CriticalHigh: 45, OptimalLow: 18, OptimalHigh: 26},
		Component:      "cooling_unit",
	},
	"humidity": {
		ID: "humidity", DisplayName: "Humidity", Unit: "%RH",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: 20, WarningHigh: 80, CriticalLow: 10, CriticalHigh: 95, OptimalLow: 35, OptimalHigh: 65},
		Component:      "enclosure_seal",
	},
	"pressure": {
		ID: "pressure", DisplayName: "Pressure", Unit: "hPa",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: 950, WarningHigh: 1070, CriticalLow: 900, CriticalHigh: 1100, OptimalLow: 980, OptimalHigh: 1040},
	},
	"gas_resistance": {
		ID: "gas_resistance", DisplayName: "Gas Resistance", Unit: "kΩ",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: 5, WarningHigh: 500, CriticalLow: 1, CriticalHigh: 800, OptimalLow: 50, OptimalHigh: 300},
		Component:      "gas_sensor",
	},
	"pm1": {
		ID: "pm1", DisplayName: "PM1.0", Unit: "µg/m³",
		Directionality: OneSidedHigh,
		Defaults:       Defaults{WarningHigh: 35, CriticalHigh: 75, OptimalHigh: 15},
		Component:      "air_filter",
	},
	"pm2_5": {
		ID: "pm2_5", DisplayName: "PM2.5", Unit: "µg/m³",
		Directionality: OneSidedHigh,
		Defaults:       Defaults{WarningHigh: 35, CriticalHigh: 75, OptimalHigh: 15},
		Component:      "air_filter",
	},
	"pm10": {
		ID: "pm10", DisplayName: "PM10", Unit: "µg/m³",
		Directionality: OneSidedHigh,
		Defaults:       Defaults{WarningHigh: 50, CriticalHigh: 150, OptimalHigh: 25},
		Component:      "air_filter",
	},
	"accel_x": {
		ID: "accel_x", DisplayName: "Acceleration X", Unit: "m/s²",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: -2, WarningHigh: 2, CriticalLow: -5, CriticalHigh: 5, OptimalLow: -0.5, OptimalHigh: 0.5},
		Component:      "mounting",
	},
	"accel_y": {
		ID: "accel_y", DisplayName: "Acceleration Y", Unit: "m/s²",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: -2, WarningHigh: 2, CriticalLow: -5, CriticalHigh: 5, OptimalLow: -0.5, OptimalHigh: 0.5},
		Component:      "mounting",
	},
	"accel_z": {
		ID: "accel_z", DisplayName: "Acceleration Z", Unit: "m/s²",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: -2, WarningHigh: 2, CriticalLow: -5, CriticalHigh: 5, OptimalLow: -0.5, OptimalHigh: 0.5},
		Component:      "mounting",
	},
	"accel_mag": {
		ID: "accel_mag", DisplayName: "Vibration Magnitude", Unit: "m/s²",
		Directionality: OneSidedHigh,
		Defaults:       Defaults{WarningHigh: 3, CriticalHigh: 8, OptimalHigh: 1},
		Component:      "bearing",
	},
	"gyro_x": {
		ID: "gyro_x", DisplayName: "Angular Velocity X", Unit: "°/s",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: -10, WarningHigh: 10, CriticalLow: -30, CriticalHigh: 30, OptimalLow: -2, OptimalHigh: 2},
		Component:      "mounting",
	},
	"gyro_y": {
		ID: "gyro_y", DisplayName: "Angular Velocity Y", Unit: "°/s",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: -10, WarningHigh: 10, CriticalLow: -30, CriticalHigh: 30, OptimalLow: -2, OptimalHigh: 2},
		Component:      "mounting",
	},
	"gyro_z": {
		ID: "gyro_z", DisplayName: "Angular Velocity Z", Unit: "°/s",
		Directionality: TwoSided,
		Defaults:       Defaults{WarningLow: -10, WarningHigh: 10, CriticalLow: -30, CriticalHigh: 30, OptimalLow: -2, OptimalHigh: 2},
		Component:      "mounting",
	},
	"gyro_mag": {
		ID: "gyro_mag", DisplayName: "Rotation Magnitude", Unit: "°/s",
		Directionality: OneSidedHigh,
		Defaults:       Defaults{WarningHigh: 15, CriticalHigh: 40, OptimalHigh: 5},
		Component:      "bearing",
	},
}

// Get 按 ID 获取通道描述符
func Get(id string) (Descriptor, bool) {
	d, ok := registry[id]
	return d, ok
}

// All 返回全部通道描述符（固定顺序，图表展示用）
func All() []Descriptor {
	out := make([]Descriptor, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

// IDs 返回全部通道 ID（固定顺序）
func IDs() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

var order = []string{
	"temperature", "humidity", "pressure", "gas_resistance",
	"pm1", "pm2_5", "pm10",
	"accel_x", "accel_y", "accel_z", "accel_mag",
	"gyro_x", "gyro_y", "gyro_z", "gyro_mag",
}
