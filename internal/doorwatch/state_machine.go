package doorwatch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"plantwatch-analytics/internal/models"
)

// StateMachine 门禁安全状态机
// 状态推导只依赖绝对的 opened_at 时间戳和当前时刻：elapsed 每次评估都从
// opened_at 重算，不做计数器累加，进程挂起恢复后不会漂移
type StateMachine struct {
	doorID   string
	settings models.SecuritySettings
	loc      *time.Location

	state    string
	openedAt *time.Time
}

// NewStateMachine 创建状态机（初始为 SECURE）
// loc 为报告时区：夜间模式的 "HH:MM" 按该时区解释，与 now 携带的时区无关
func NewStateMachine(doorID string, settings models.SecuritySettings, loc *time.Location) *StateMachine {
	if loc == nil {
		loc = time.UTC
	}
	return &StateMachine{
		doorID:   doorID,
		settings: settings,
		loc:      loc,
		state:    models.DoorSecure,
	}
}

// HandleEvent 处理门磁事件，返回事件后的状态快照
func (m *StateMachine) HandleEvent(ev models.DoorEvent, now time.Time) models.DoorStatus {
	switch ev.Action {
	case models.DoorActionClose:
		// 任何打开状态收到关门事件都回到 SECURE，时长清零
		m.state = models.DoorSecure
		m.openedAt = nil
	case models.DoorActionOpen:
		openedAt := ev.Timestamp
		m.openedAt = &openedAt
		if m.inRestrictedWindow(now) {
			// 限制时段内开门立即判定入侵，与开门时长无关
			m.state = models.DoorIntrusionCritical
		} else {
			m.state = models.DoorWarning
		}
	}
	return m.Evaluate(now)
}

// Evaluate 按当前时刻重新评估状态（时钟 tick 的入口）
// WARNING 下超过最大开门时长升级为 OVERSTAY_CRITICAL
func (m *StateMachine) Evaluate(now time.Time) models.DoorStatus {
	elapsed := 0
	if m.openedAt != nil {
		elapsed = int(now.Sub(*m.openedAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
	}

	if m.state == models.DoorWarning || m.state == models.DoorOverstayCritical {
		if elapsed >= m.settings.MaxOpenDurationSeconds {
			m.state = models.DoorOverstayCritical
		} else {
			m.state = models.DoorWarning
		}
	}

	return models.DoorStatus{
		DoorID:         m.doorID,
		State:          m.state,
		IsRedAlert:     m.state == models.DoorOverstayCritical || m.state == models.DoorIntrusionCritical,
		IsAmberWarning: m.state == models.DoorWarning,
		ElapsedSeconds: elapsed,
		OpenedAt:       m.openedAt,
	}
}

// IsOpen 门当前是否处于打开状态
func (m *StateMachine) IsOpen() bool {
	return m.state != models.DoorSecure
}

// inRestrictedWindow 当前时刻按报告时区折算后是否落在限制时段（夜间模式）内，支持跨午夜
func (m *StateMachine) inRestrictedWindow(now time.Time) bool {
	start, err1 := parseClock(m.settings.NightModeStart)
	end, err2 := parseClock(m.settings.NightModeEnd)
	if err1 != nil || err2 != nil || start == end {
		return false
	}

	local := now.In(m.loc)
	minutes := local.Hour()*60 + local.Minute()
	if start < end {
		return minutes >= start && minutes < end
	}
	// 跨午夜，如 22:00 → 06:00
	return minutes >= start || minutes < end
}

// parseClock 解析 "HH:MM" 为当日分钟数
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + min, nil
}
