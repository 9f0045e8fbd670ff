package store

import (
	"context"
)

// RecordOrderEvent appends an event to the order audit log. The unique
// event_id makes replayed deliveries a no-op; the bool reports whether the
// row was actually written.
func (s *Store) RecordOrderEvent(ctx context.Context, eventID, eventType string, orderID int64, payload []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO order_events (event_id, event_type, order_id, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`,
		eventID, eventType, orderID, payload)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
