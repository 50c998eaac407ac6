package models

import (
	"time"
)

// SensorReading 原始传感器读数（对应 sensor_readings 表，写入后不可变）
// 所有通道均为可空值：缺失用 nil 表示，统计计算必须跳过 nil，绝不能当作 0
type SensorReading struct {
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"` // UTC 存储，展示时转换到报告时区
	Location   string    `json:"location" db:"location"`

	// 环境通道
	Temperature   *float64 `json:"temperature,omitempty" db:"temperature"`
	Humidity      *float64 `json:"humidity,omitempty" db:"humidity"`
	Pressure      *float64 `json:"pressure,omitempty" db:"pressure"`
	GasResistance *float64 `json:"gas_resistance,omitempty" db:"gas_resistance"`

	// 颗粒物通道
	PM1  *float64 `json:"pm1,omitempty" db:"pm1"`
	PM25 *float64 `json:"pm2_5,omitempty" db:"pm2_5"`
	PM10 *float64 `json:"pm10,omitempty" db:"pm10"`

	// 三轴加速度 + 合成幅值
	AccelX   *float64 `json:"accel_x,omitempty" db:"accel_x"`
	AccelY   *float64 `json:"accel_y,omitempty" db:"accel_y"`
	AccelZ   *float64 `json:"accel_z,omitempty" db:"accel_z"`
	AccelMag *float64 `json:"accel_mag,omitempty" db:"accel_mag"`

	// 三轴角速度 + 合成幅值
	GyroX   *float64 `json:"gyro_x,omitempty" db:"gyro_x"`
	GyroY   *float64 `json:"gyro_y,omitempty" db:"gyro_y"`
	GyroZ   *float64 `json:"gyro_z,omitempty" db:"gyro_z"`
	GyroMag *float64 `json:"gyro_mag,omitempty" db:"gyro_mag"`

	// 上游计算的健康指标（本服务只当不透明数值消费）
	AnomalyScore *float64 `json:"anomaly_score,omitempty" db:"anomaly_score"`
	QualityScore *float64 `json:"quality_score,omitempty" db:"quality_score"`
}

// Channel 按通道 ID 取值，未知通道返回 nil
func (r *SensorReading) Channel(id string) *float64 {
	switch id {
	case "temperature":
		return r.Temperature
	case "humidity":
		return r.Humidity
	case "pressure":
		return r.Pressure
	case "gas_resistance":
		return r.GasResistance
	case "pm1":
		return r.PM1
	case "pm2_5":
		return r.PM25
	case "pm10":
		return r.PM10
	case "accel_x":
		return r.AccelX
	case "accel_y":
		return r.AccelY
	case "accel_z":
		return r.AccelZ
	case "accel_mag":
		return r.AccelMag
	case "gyro_x":
		return r.GyroX
	case "gyro_y":
		return r.GyroY
	case "gyro_z":
		return r.GyroZ
	case "gyro_mag":
		return r.GyroMag
	}
	return nil
}

// QualityProxy 质量代理值：优先使用 quality_score，缺失时用 100 - anomaly_score*10 回退
// 该回退公式直接驱动剩余寿命预测，必须保持原样
func (r *SensorReading) QualityProxy() *float64 {
	if r.QualityScore != nil {
		return r.QualityScore
	}
	if r.AnomalyScore != nil {
		v := 100 - *r.AnomalyScore*10
		return &v
	}
	return nil
}
