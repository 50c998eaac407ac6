package consumer

import (
	"testing"
	"time"

	"plantwatch-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPayloadConsumer(handler DoorEventHandler) *DoorConsumer {
	return &DoorConsumer{
		handler: handler,
		logger:  zap.NewNop(),
	}
}

func TestHandleMessage_DecodesEvent(t *testing.T) {
	var got models.DoorEvent
	d := newPayloadConsumer(func(ev models.DoorEvent, _ time.Time) { got = ev })

	payload := []byte(`{"door_id":"dock-1","action":"open","timestamp":1778932800}`)
	require.NoError(t, d.handleMessage("plantwatch/door/dock-1/events", payload))

	assert.Equal(t, "dock-1", got.DoorID)
	assert.Equal(t, models.DoorActionOpen, got.Action)
	assert.Equal(t, int64(1778932800), got.Timestamp.Unix())
}

func TestHandleMessage_DoorIDFallsBackToTopic(t *testing.T) {
	var got models.DoorEvent
	d := newPayloadConsumer(func(ev models.DoorEvent, _ time.Time) { got = ev })

	payload := []byte(`{"action":"close","timestamp":1778932800}`)
	require.NoError(t, d.handleMessage("plantwatch/door/dock-7/events", payload))
	assert.Equal(t, "dock-7", got.DoorID)
}

func TestHandleMessage_RejectsUnknownAction(t *testing.T) {
	called := false
	d := newPayloadConsumer(func(models.DoorEvent, time.Time) { called = true })

	err := d.handleMessage("plantwatch/door/dock-1/events", []byte(`{"action":"ajar"}`))
	require.Error(t, err)
	assert.False(t, called)
}

func TestHandleMessage_RejectsMalformedJSON(t *testing.T) {
	d := newPayloadConsumer(func(models.DoorEvent, time.Time) {})
	assert.Error(t, d.handleMessage("plantwatch/door/dock-1/events", []byte(`{not json`)))
}

func TestDoorIDFromTopic(t *testing.T) {
	assert.Equal(t, "dock-1", doorIDFromTopic("plantwatch/door/dock-1/events"))
	assert.Equal(t, "unknown", doorIDFromTopic("malformed"))
}
