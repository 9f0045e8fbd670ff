package service

import (
	"context"
	"fmt"
	"time"

	"shop-backend/internal/models"
	"shop-backend/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService turns client carts into durable, price-correct orders
type OrderService struct {
	catalog   CatalogStore
	orders    OrderStore
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(catalog CatalogStore, orders OrderStore, publisher EventPublisher) *OrderService {
	return &OrderService{
		catalog:   catalog,
		orders:    orders,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CartItem is one client-submitted (product, quantity) pair
type CartItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// CreateOrderRequest is the order placement payload. TotalPrice is accepted
// for wire compatibility with the front-end but never stored; the total is
// always recomputed from catalog prices.
type CreateOrderRequest struct {
	FullName   string          `json:"full_name"`
	Address    string          `json:"address"`
	City       string          `json:"city"`
	PostalCode string          `json:"postal_code"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []CartItem      `json:"items"`
}

// OrderItemResponse is the wire shape for one order line
type OrderItemResponse struct {
	Product     int64           `json:"product"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// OrderResponse is the wire shape for a full order aggregate
type OrderResponse struct {
	ID         int64               `json:"id"`
	FullName   string              `json:"full_name"`
	Address    string              `json:"address"`
	City       string              `json:"city"`
	PostalCode string              `json:"postal_code"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Items      []OrderItemResponse `json:"items"`
	IsPaid     bool                `json:"is_paid"`
	CreatedAt  time.Time           `json:"created_at"`
}

// PlaceOrder validates the cart against the catalog, snapshots prices, and
// persists the order with its items in one transaction. The stored total is
// the server-side sum of line subtotals; the client-sent total is ignored.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if err := validateShipping(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	products, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("unknown_product").Inc()
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, ci := range req.Items {
		product := products[ci.ID]
		items = append(items, models.OrderItem{
			ProductID:   ci.ID,
			Price:       product.Price,
			Quantity:    ci.Quantity,
			ProductName: product.Name,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity))))
	}

	order := &models.Order{
		UserID:     userID,
		FullName:   req.FullName,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		TotalPrice: total,
	}

	if err := s.orders.CreateOrderWithItems(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	util.OrderItemsPerOrder.Observe(float64(len(items)))
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.Int("items", len(items)),
		zap.String("total", total.String()))

	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, it := range items {
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		UserID:     userID,
		TotalPrice: total,
		Items:      eventItems,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return toOrderResponse(order, items), nil
}

// ListOrders returns the caller's orders, newest first. A user with no
// orders gets an empty list, never an error.
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]OrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.orders.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		items, err := s.orders.GetOrderItemsByOrderID(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load items for order %d: %w", orders[i].ID, err)
		}
		out = append(out, *toOrderResponse(&orders[i], items))
	}
	return out, nil
}

// MarkPaid flags an order as paid, scoped to its owner. Someone else's order
// is reported as ErrNotFound, never as a permission error. Repeated calls
// succeed and rewrite the flag.
func (s *OrderService) MarkPaid(ctx context.Context, userID, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.MarkPaid")
	defer span.End()

	order, err := s.orders.MarkOrderPaid(ctx, userID, orderID)
	if err != nil {
		return translateNotFound(err)
	}

	util.OrdersPaidTotal.Inc()
	s.logger.Info("Order marked paid",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", userID))

	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		UserID:  order.UserID,
	}
	if err := s.publisher.PublishOrderPaid(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return nil
}

func validateShipping(req *CreateOrderRequest) error {
	ve := NewValidationError()
	if req.FullName == "" {
		ve.Add("full_name", "This field is required.")
	}
	if req.Address == "" {
		ve.Add("address", "This field is required.")
	}
	if req.City == "" {
		ve.Add("city", "This field is required.")
	}
	if req.PostalCode == "" {
		ve.Add("postal_code", "This field is required.")
	}
	if len(req.Items) == 0 {
		ve.Add("items", "At least one item is required.")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			ve.Add("items", fmt.Sprintf("Quantity for product %d must be a positive integer.", item.ID))
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// resolveProducts loads every referenced product before anything is written,
// so a bad id rejects the whole cart with zero rows persisted.
func (s *OrderService) resolveProducts(ctx context.Context, items []CartItem) (map[int64]*models.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, item := range items {
		if _, ok := byID[item.ID]; !ok {
			return nil, fmt.Errorf("product %d: %w", item.ID, ErrNotFound)
		}
	}

	return byID, nil
}

func toOrderResponse(order *models.Order, items []models.OrderItem) *OrderResponse {
	respItems := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		respItems = append(respItems, OrderItemResponse{
			Product:     it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}
	return &OrderResponse{
		ID:         order.ID,
		FullName:   order.FullName,
		Address:    order.Address,
		City:       order.City,
		PostalCode: order.PostalCode,
		TotalPrice: order.TotalPrice,
		Items:      respItems,
		IsPaid:     order.IsPaid,
		CreatedAt:  order.CreatedAt,
	}
}
