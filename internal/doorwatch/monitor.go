package doorwatch

import (
	"sync"
	"time"

	"plantwatch-analytics/internal/models"

	"go.uber.org/zap"
)

// 时长时钟间隔（1 秒重算一次 elapsed），闪烁时钟仅用于前端呈现
const (
	durationTickInterval = time.Second
	blinkTickInterval    = 500 * time.Millisecond
)

// StatusSink 状态发布回调（每次评估产出完整快照，整体替换，不增量修改）
type StatusSink func(status models.DoorStatus)

// Monitor 门禁监控器：把事件流和时钟 tick 送入状态机，并对外发布状态
type Monitor struct {
	machine   *StateMachine
	scheduler Scheduler
	sink      StatusSink
	logger    *zap.Logger

	mu            sync.Mutex
	durationClock TickHandle
	blinkClock    TickHandle
	blinkOn       bool
}

// NewMonitor 创建门禁监控器
func NewMonitor(machine *StateMachine, scheduler Scheduler, sink StatusSink, logger *zap.Logger) *Monitor {
	return &Monitor{
		machine:   machine,
		scheduler: scheduler,
		sink:      sink,
		logger:    logger,
	}
}

// HandleEvent 处理一条门磁事件
// 开门启动 1 秒时长时钟（及报警闪烁时钟），关门取消全部时钟
func (mon *Monitor) HandleEvent(ev models.DoorEvent, now time.Time) models.DoorStatus {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	status := mon.machine.HandleEvent(ev, now)
	mon.logger.Info("Door event processed",
		zap.String("door_id", ev.DoorID),
		zap.String("action", ev.Action),
		zap.String("state", status.State),
	)

	if mon.machine.IsOpen() {
		mon.startClocksLocked()
	} else {
		mon.stopClocksLocked()
	}

	mon.publishLocked(status)
	return status
}

// Tick 时钟入口：从绝对 opened_at 重算 elapsed 并整体重建状态
func (mon *Monitor) Tick(now time.Time) models.DoorStatus {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	prev := mon.machine.state
	status := mon.machine.Evaluate(now)
	if status.State != prev {
		mon.logger.Warn("Door state escalated",
			zap.String("door_id", status.DoorID),
			zap.String("from", prev),
			zap.String("to", status.State),
			zap.Int("elapsed_seconds", status.ElapsedSeconds),
		)
	}
	mon.publishLocked(status)
	return status
}

// Stop 停止全部时钟
func (mon *Monitor) Stop() {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	mon.stopClocksLocked()
}

func (mon *Monitor) startClocksLocked() {
	if mon.durationClock == nil {
		mon.durationClock = mon.scheduler.ScheduleTick(durationTickInterval, func(now time.Time) {
			mon.Tick(now)
		})
	}
	if mon.blinkClock == nil {
		mon.blinkClock = mon.scheduler.ScheduleTick(blinkTickInterval, func(time.Time) {
			mon.mu.Lock()
			mon.blinkOn = !mon.blinkOn
			mon.mu.Unlock()
		})
	}
}

func (mon *Monitor) stopClocksLocked() {
	if mon.durationClock != nil {
		mon.durationClock.Cancel()
		mon.durationClock = nil
	}
	if mon.blinkClock != nil {
		mon.blinkClock.Cancel()
		mon.blinkClock = nil
	}
	mon.blinkOn = false
}

func (mon *Monitor) publishLocked(status models.DoorStatus) {
	if mon.sink != nil {
		mon.sink(status)
	}
}
