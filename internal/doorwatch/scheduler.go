package doorwatch

import (
	"sync"
	"time"
)

// TickHandle 可取消的定时回调句柄
type TickHandle interface {
	Cancel()
}

// Scheduler 定时 tick 能力的抽象（状态机只消费该抽象，不直接持有 time.Ticker）
type Scheduler interface {
	ScheduleTick(interval time.Duration, fn func(now time.Time)) TickHandle
}

// TickerScheduler 基于 time.Ticker 的默认实现
type TickerScheduler struct{}

// NewTickerScheduler 创建默认调度器
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// ScheduleTick 按 interval 周期回调，Cancel 后停止
func (s *TickerScheduler) ScheduleTick(interval time.Duration, fn func(now time.Time)) TickHandle {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case now := <-ticker.C:
				fn(now)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return &tickerHandle{done: done}
}

type tickerHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() {
		close(h.done)
	})
}
