package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"plantwatch-analytics/internal/config"
	"plantwatch-analytics/internal/models"

	"go.uber.org/zap"
)

// CacheManager 实时数据缓存管理器
// 持有最新读数快照和门禁状态的 Redis 缓存；生命周期显式：
// Init 在进程启动时调用，Clear 在会话结束（登出/停机）时清空派生状态
type CacheManager struct {
	config *config.Config
	kv     KVStore
	logger *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(cfg *config.Config, kv KVStore, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config: cfg,
		kv:     kv,
		logger: logger,
	}
}

// Init 缓存生命周期起点（当前无预热动作，保留注入点）
func (c *CacheManager) Init(ctx context.Context) error {
	return nil
}

// Clear 清空本服务写入的全部派生缓存
func (c *CacheManager) Clear(ctx context.Context) error {
	patterns := []string{
		c.config.Analytics.Cache.RealtimeKeyPrefix + "*",
		c.config.Analytics.Cache.DoorKeyPrefix + "*",
	}
	for _, pattern := range patterns {
		keys, err := c.kv.Keys(ctx, pattern)
		if err != nil {
			return fmt.Errorf("failed to list cache keys: %w", err)
		}
		for _, key := range keys {
			if err := c.kv.Delete(ctx, key); err != nil {
				return fmt.Errorf("failed to delete cache key %s: %w", key, err)
			}
		}
	}
	return nil
}

// realtimeKey 最新读数缓存键
func (c *CacheManager) realtimeKey(location string) string {
	return c.config.Analytics.Cache.RealtimeKeyPrefix + location + c.config.Analytics.Cache.RealtimeSuffix
}

// doorKey 门禁状态缓存键
func (c *CacheManager) doorKey(doorID string) string {
	return c.config.Analytics.Cache.DoorKeyPrefix + doorID + c.config.Analytics.Cache.DoorSuffix
}

// SetRealtimeReading 写入某位置的最新读数快照
func (c *CacheManager) SetRealtimeReading(ctx context.Context, reading *models.SensorReading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime reading: %w", err)
	}

	ttl := time.Duration(c.config.Analytics.Cache.RealtimeTTL) * time.Second
	if err := c.kv.Set(ctx, c.realtimeKey(reading.Location), string(data), ttl); err != nil {
		return fmt.Errorf("failed to set realtime reading: %w", err)
	}
	return nil
}

// GetRealtimeReading 读取某位置的最新读数快照，缓存不存在返回 nil
func (c *CacheManager) GetRealtimeReading(ctx context.Context, location string) (*models.SensorReading, error) {
	val, err := c.kv.Get(ctx, c.realtimeKey(location))
	if err != nil {
		if err == ErrCacheMiss {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get realtime reading: %w", err)
	}

	var reading models.SensorReading
	if err := json.Unmarshal([]byte(val), &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal realtime reading: %w", err)
	}
	return &reading, nil
}

// PublishDoorStatus 发布门禁状态快照（整体替换）
func (c *CacheManager) PublishDoorStatus(ctx context.Context, status models.DoorStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal door status: %w", err)
	}

	if err := c.kv.Set(ctx, c.doorKey(status.DoorID), string(data), 0); err != nil {
		return fmt.Errorf("failed to publish door status: %w", err)
	}

	c.logger.Debug("Door status published",
		zap.String("door_id", status.DoorID),
		zap.String("state", status.State),
		zap.Int("elapsed_seconds", status.ElapsedSeconds),
	)
	return nil
}

// GetDoorStatus 读取门禁状态快照，不存在返回 nil
func (c *CacheManager) GetDoorStatus(ctx context.Context, doorID string) (*models.DoorStatus, error) {
	val, err := c.kv.Get(ctx, c.doorKey(doorID))
	if err != nil {
		if err == ErrCacheMiss {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get door status: %w", err)
	}

	var status models.DoorStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal door status: %w", err)
	}
	return &status, nil
}
