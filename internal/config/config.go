package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT 配置（门磁事件流订阅）
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// Config 传感器分析服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	Analytics struct {
		// 报告时区（IANA 名称）：所有日历分桶先转到该时区再截断
		ReportTimezone string

		// 阈值评估作业轮询间隔（秒）
		PollInterval int

		// critical 带的 σ 倍数
		SigmaMultiplier float64

		// 预期系统寿命（年），剩余寿命预测用
		ExpectedLifespanYears float64

		// Redis 缓存键
		Cache struct {
			RealtimeKeyPrefix string // 最新读数缓存键前缀，如 "plantwatch:location:"
			RealtimeSuffix    string // 如 ":realtime"
			DoorKeyPrefix     string // 门禁状态键前缀，如 "plantwatch:door:"
			DoorSuffix        string // 如 ":status"
			RealtimeTTL       int    // 秒
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置（带默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "plantwatch")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "true") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "plantwatch-analytics")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_DOOR_TOPIC", "plantwatch/door/+/events")
	cfg.MQTT.QoS = 1

	cfg.Analytics.ReportTimezone = getEnv("REPORT_TIMEZONE", "UTC")
	cfg.Analytics.PollInterval = parseInt(getEnv("POLL_INTERVAL", "60"), 60)
	cfg.Analytics.SigmaMultiplier = parseFloat(getEnv("SIGMA_MULTIPLIER", "3"), 3)
	cfg.Analytics.ExpectedLifespanYears = parseFloat(getEnv("EXPECTED_LIFESPAN_YEARS", "10"), 10)

	cfg.Analytics.Cache.RealtimeKeyPrefix = getEnv("CACHE_REALTIME_PREFIX", "plantwatch:location:")
	cfg.Analytics.Cache.RealtimeSuffix = ":realtime"
	cfg.Analytics.Cache.DoorKeyPrefix = getEnv("CACHE_DOOR_PREFIX", "plantwatch:door:")
	cfg.Analytics.Cache.DoorSuffix = ":status"
	cfg.Analytics.Cache.RealtimeTTL = parseInt(getEnv("CACHE_REALTIME_TTL", "300"), 300)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 时区必须能解析，启动即失败好过分桶错位
	if _, err := time.LoadLocation(cfg.Analytics.ReportTimezone); err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", cfg.Analytics.ReportTimezone, err)
	}

	return cfg, nil
}

// ReportLocation 解析配置的报告时区
func (c *Config) ReportLocation() *time.Location {
	loc, err := time.LoadLocation(c.Analytics.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, defaultValue int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}

func parseFloat(s string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return v
}
