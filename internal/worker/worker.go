package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"shop-backend/internal/broker"
	"shop-backend/internal/models"
	"shop-backend/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventRecorder appends events to the order audit log
type EventRecorder interface {
	RecordOrderEvent(ctx context.Context, eventID, eventType string, orderID int64, payload []byte) (bool, error)
}

// AuditWorker consumes the service's own order events and writes them to an
// append-only audit table. It never mutates catalog or order state.
type AuditWorker struct {
	consumer *broker.Consumer
	recorder EventRecorder
	logger   *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, recorder EventRecorder) *AuditWorker {
	return &AuditWorker{
		consumer: consumer,
		recorder: recorder,
		logger:   util.GetLogger(),
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var envelope struct {
		models.BaseEvent
		OrderID int64 `json:"order_id"`
	}
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if envelope.EventID == "" || envelope.EventType == "" {
		w.logger.Warn("Skipping malformed event", zap.ByteString("value", msg.Value))
		return nil
	}

	written, err := w.recorder.RecordOrderEvent(ctx, envelope.EventID, envelope.EventType, envelope.OrderID, msg.Value)
	if err != nil {
		return fmt.Errorf("failed to record event %s: %w", envelope.EventID, err)
	}

	if !written {
		w.logger.Debug("Event already recorded", zap.String("event_id", envelope.EventID))
		return nil
	}

	util.OrderEventsRecordedTotal.WithLabelValues(envelope.EventType).Inc()
	return nil
}
