package reliability

import (
	"testing"
	"time"

	"plantwatch-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(created time.Time, completedAfter *time.Duration) models.MaintenanceTask {
	t := models.MaintenanceTask{
		CreatedAt: created,
		DueDate:   created.Add(48 * time.Hour),
		Status:    models.TaskPending,
	}
	if completedAfter != nil {
		done := created.Add(*completedAfter)
		t.CompletedAt = &done
		t.Status = models.TaskCompleted
	}
	return t
}

func dur(d time.Duration) *time.Duration { return &d }

func alert(created time.Time, severity, priority string) models.AlertEvent {
	return models.AlertEvent{
		CreatedAt: created,
		Severity:  severity,
		Priority:  priority,
	}
}

func TestMTTR_MeanOfCompletedTasks(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tasks := []models.MaintenanceTask{
		task(base, dur(2*time.Hour)),
		task(base.Add(time.Hour), dur(4*time.Hour)),
		task(base.Add(2*time.Hour), dur(6*time.Hour)),
		task(base.Add(3*time.Hour), nil), // 未完成，不参与
	}

	m := MTTR(tasks)
	require.NotNil(t, m)
	assert.InDelta(t, 4, *m, 1e-9)
}

func TestMTTR_NoCompletedTasksNotApplicable(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tasks := []models.MaintenanceTask{task(base, nil)}
	assert.Nil(t, MTTR(tasks))
	assert.Nil(t, MTTR(nil))
}

func TestMTBF_TwoQualifyingEvents(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []models.AlertEvent{
		alert(base.Add(10*time.Hour), models.SeverityCritical, "high"),
		alert(base, models.SeverityCritical, "high"), // 乱序输入也要先排序
	}

	m := MTBF(events)
	require.NotNil(t, m)
	assert.InDelta(t, 10, *m, 1e-9)
}

func TestMTBF_SingleQualifyingEventNotApplicable(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []models.AlertEvent{
		alert(base, models.SeverityCritical, "high"),
		// 更低级别的事件不能凑数
		alert(base.Add(time.Hour), models.SeverityLow, "low"),
		alert(base.Add(2*time.Hour), models.SeverityMedium, "normal"),
	}
	assert.Nil(t, MTBF(events))
	assert.Nil(t, MTBF(nil))
}

func TestMTBF_FiltersToHighestSeverityClass(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []models.AlertEvent{
		alert(base, models.SeverityCritical, "high"),
		alert(base.Add(2*time.Hour), models.SeverityCritical, "high"),
		// high 级别事件密集出现，但不得影响 critical 类的间隔
		alert(base.Add(10*time.Minute), models.SeverityHigh, "high"),
		alert(base.Add(20*time.Minute), models.SeverityHigh, "high"),
	}

	m := MTBF(events)
	require.NotNil(t, m)
	assert.InDelta(t, 2, *m, 1e-9)
}
