package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-backend/internal/models"
)

// CreateOrderWithItems writes the order and all of its line items inside a
// single transaction. Either everything is persisted or nothing is: a failed
// item insert rolls back the order row as well.
func (s *Store) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (user_id, full_name, address, city, postal_code, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_paid, created_at`

	row := tx.QueryRowxContext(ctx, orderQuery,
		order.UserID, order.FullName, order.Address, order.City, order.PostalCode, order.TotalPrice)
	if err := row.Scan(&order.ID, &order.IsPaid, &order.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		err := tx.QueryRowxContext(ctx, itemQuery,
			items[i].OrderID, items[i].ProductID, items[i].Price, items[i].Quantity).
			Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item for product %d: %w", items[i].ProductID, err)
		}
	}

	return tx.Commit()
}

// GetOrdersByUserID retrieves a user's orders, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order with product names
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.price, oi.quantity, p.name AS product_name
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	return items, err
}

// MarkOrderPaid sets is_paid on an order scoped to its owner. An order that
// does not exist or belongs to another user yields ErrNotFound, so callers
// cannot distinguish the two cases.
func (s *Store) MarkOrderPaid(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		UPDATE orders SET is_paid = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING *`, orderID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
