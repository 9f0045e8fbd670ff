package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Category represents a product category
type Category struct {
	ID    int64          `db:"id" json:"id"`
	Name  string         `db:"name" json:"name"`
	Slug  string         `db:"slug" json:"slug"`
	Image sql.NullString `db:"image" json:"-"`
}

// Product represents a product in the catalog.
// Price is authoritative: order placement always snapshots it from here,
// never from client input.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	CategoryID  sql.NullInt64   `db:"category_id" json:"-"`
	Name        string          `db:"name" json:"name"`
	Slug        string          `db:"slug" json:"slug"`
	Description string          `db:"description" json:"description"`
	Image       sql.NullString  `db:"image" json:"-"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	IsActive    bool            `db:"is_active" json:"-"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
}

// User represents a registered account, keyed by email
type User struct {
	ID                int64     `db:"id" json:"id"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"-"`
	PasswordChangedAt time.Time `db:"password_changed_at" json:"-"`
}

// Order represents a placed order owned by a user
type Order struct {
	ID         int64           `db:"id" json:"id"`
	UserID     int64           `db:"user_id" json:"-"`
	FullName   string          `db:"full_name" json:"full_name"`
	Address    string          `db:"address" json:"address"`
	City       string          `db:"city" json:"city"`
	PostalCode string          `db:"postal_code" json:"postal_code"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	IsPaid     bool            `db:"is_paid" json:"is_paid"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// OrderItem represents one line of an order. Price is a snapshot of the
// product price at purchase time and is never re-derived.
type OrderItem struct {
	ID        int64           `db:"id" json:"-"`
	OrderID   int64           `db:"order_id" json:"-"`
	ProductID int64           `db:"product_id" json:"product"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int             `db:"quantity" json:"quantity"`

	// Joined from products for responses
	ProductName string `db:"product_name" json:"product_name"`
}

// OrderEvent is one row of the append-only order audit log
type OrderEvent struct {
	ID         int64     `db:"id"`
	EventID    string    `db:"event_id"`
	EventType  string    `db:"event_type"`
	OrderID    int64     `db:"order_id"`
	Payload    []byte    `db:"payload"`
	RecordedAt time.Time `db:"recorded_at"`
}
