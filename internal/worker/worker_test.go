package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shop-backend/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordOrderEvent(ctx context.Context, eventID, eventType string, orderID int64, payload []byte) (bool, error) {
	args := m.Called(ctx, eventID, eventType, orderID, payload)
	return args.Bool(0), args.Error(1)
}

func newTestWorker(recorder EventRecorder) *AuditWorker {
	return &AuditWorker{recorder: recorder, logger: zap.NewNop()}
}

func orderCreatedMessage(t *testing.T, eventID string, orderID int64) kafka.Message {
	t.Helper()

	event := models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   eventID,
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		UserID:     7,
		TotalPrice: decimal.RequireFromString("19.98"),
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	return kafka.Message{Value: value}
}

func TestHandleMessage_RecordsEvent(t *testing.T) {
	recorder := new(mockRecorder)
	w := newTestWorker(recorder)

	msg := orderCreatedMessage(t, "evt-1", 42)
	recorder.On("RecordOrderEvent", mock.Anything, "evt-1", models.EventTypeOrderCreated, int64(42), msg.Value).
		Return(true, nil)

	err := w.handleMessage(context.Background(), msg)
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestHandleMessage_DuplicateDeliveryIsNoOp(t *testing.T) {
	recorder := new(mockRecorder)
	w := newTestWorker(recorder)

	msg := orderCreatedMessage(t, "evt-1", 42)
	recorder.On("RecordOrderEvent", mock.Anything, "evt-1", models.EventTypeOrderCreated, int64(42), msg.Value).
		Return(true, nil).Once()
	recorder.On("RecordOrderEvent", mock.Anything, "evt-1", models.EventTypeOrderCreated, int64(42), msg.Value).
		Return(false, nil).Once()

	require.NoError(t, w.handleMessage(context.Background(), msg))
	require.NoError(t, w.handleMessage(context.Background(), msg))
	recorder.AssertExpectations(t)
}

func TestHandleMessage_SkipsMalformedEvents(t *testing.T) {
	recorder := new(mockRecorder)
	w := newTestWorker(recorder)

	err := w.handleMessage(context.Background(), kafka.Message{Value: []byte(`{"order_id": 1}`)})
	assert.NoError(t, err, "events without an id are skipped, not retried")

	recorder.AssertNotCalled(t, "RecordOrderEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_InvalidJSONReturnsError(t *testing.T) {
	recorder := new(mockRecorder)
	w := newTestWorker(recorder)

	err := w.handleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
