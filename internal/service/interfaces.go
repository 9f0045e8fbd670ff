package service

import (
	"context"
	"time"

	"shop-backend/internal/models"
)

// CatalogStore is the catalog read surface used by services
type CatalogStore interface {
	GetActiveProducts(ctx context.Context) ([]models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
}

// UserStore is the identity persistence surface
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
}

// OrderStore is the order persistence surface
type OrderStore interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	MarkOrderPaid(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

// EventPublisher publishes domain events to the broker
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error
}

// TokenInvalidator revokes tokens issued before a cutoff (password change)
type TokenInvalidator interface {
	InvalidateTokensBefore(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error
}
