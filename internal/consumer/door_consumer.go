package consumer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"plantwatch-analytics/internal/config"
	"plantwatch-analytics/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// DoorEventHandler 门磁事件处理回调
type DoorEventHandler func(ev models.DoorEvent, now time.Time)

// DoorConsumer 门磁事件消费者：订阅 MQTT 主题，将事件解码后推给状态机
// 网络重连由 paho 自动处理；本消费者假设收到的是已解析的有序事件
type DoorConsumer struct {
	config  *config.MQTTConfig
	client  mqtt.Client
	handler DoorEventHandler
	logger  *zap.Logger
}

// doorEventPayload MQTT 消息体
type doorEventPayload struct {
	DoorID    string `json:"door_id"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"` // Unix 秒
}

// NewDoorConsumer 创建门磁事件消费者并连接 Broker
func NewDoorConsumer(cfg *config.MQTTConfig, handler DoorEventHandler, logger *zap.Logger) (*DoorConsumer, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &DoorConsumer{
		config:  cfg,
		client:  client,
		handler: handler,
		logger:  logger,
	}, nil
}

// Start 订阅门磁事件主题
func (d *DoorConsumer) Start() error {
	token := d.client.Subscribe(d.config.Topic, d.config.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		if err := d.handleMessage(msg.Topic(), msg.Payload()); err != nil {
			d.logger.Error("Failed to handle door event message",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", d.config.Topic, token.Error())
	}

	d.logger.Info("Door event consumer started",
		zap.String("topic", d.config.Topic),
	)
	return nil
}

// handleMessage 解码并分发一条门磁事件
func (d *DoorConsumer) handleMessage(topic string, payload []byte) error {
	var p doorEventPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal door event: %w", err)
	}

	if p.DoorID == "" {
		// 主题格式 plantwatch/door/{door_id}/events，消息体缺失时从主题补
		p.DoorID = doorIDFromTopic(topic)
	}
	if p.Action != models.DoorActionOpen && p.Action != models.DoorActionClose {
		return fmt.Errorf("unknown door action: %q", p.Action)
	}

	ev := models.DoorEvent{
		DoorID:    p.DoorID,
		Action:    p.Action,
		Timestamp: time.Unix(p.Timestamp, 0),
	}
	d.handler(ev, time.Now())
	return nil
}

// Stop 取消订阅并断开连接
func (d *DoorConsumer) Stop() {
	if d.client.IsConnected() {
		if token := d.client.Unsubscribe(d.config.Topic); token.Wait() && token.Error() != nil {
			d.logger.Error("Failed to unsubscribe",
				zap.Error(token.Error()),
			)
		}
		d.client.Disconnect(250)
	}
}

// doorIDFromTopic 从主题第 3 段提取 door_id
func doorIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return "unknown"
}
