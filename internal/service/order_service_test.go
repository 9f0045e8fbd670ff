package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shop-backend/internal/mocks"
	"shop-backend/internal/models"
	"shop-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderServiceForTest() (*OrderService, *mocks.MockCatalogStore, *mocks.MockOrderStore, *mocks.MockEventPublisher) {
	catalog := new(mocks.MockCatalogStore)
	orders := new(mocks.MockOrderStore)
	publisher := new(mocks.MockEventPublisher)
	return NewOrderService(catalog, orders, publisher), catalog, orders, publisher
}

func validOrderRequest(items ...CartItem) *CreateOrderRequest {
	return &CreateOrderRequest{
		FullName:   "Jane Doe",
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Items:      items,
	}
}

func TestPlaceOrder_SnapshotsCatalogPrice(t *testing.T) {
	svc, catalog, orders, publisher := newOrderServiceForTest()

	catalog.On("GetProductsByIDs", mock.Anything, []int64{1}).Return([]models.Product{
		{ID: 1, Name: "Mug", Price: decimal.RequireFromString("9.99")},
	}, nil)

	orders.On("CreateOrderWithItems", mock.Anything, mock.AnythingOfType("*models.Order"), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			order.ID = 42
			order.CreatedAt = time.Now()
		})

	publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	// Client claims the order costs one cent; the server must not care.
	req := validOrderRequest(CartItem{ID: 1, Quantity: 2})
	req.TotalPrice = decimal.RequireFromString("0.01")

	resp, err := svc.PlaceOrder(context.Background(), 7, req)
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].Price.Equal(decimal.RequireFromString("9.99")),
		"item price %s should equal catalog price", resp.Items[0].Price)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("19.98")),
		"total %s should be the server-computed sum", resp.TotalPrice)
	assert.Equal(t, int64(42), resp.ID)
}

func TestPlaceOrder_OneItemRowPerCartItem(t *testing.T) {
	svc, catalog, orders, publisher := newOrderServiceForTest()

	catalog.On("GetProductsByIDs", mock.Anything, []int64{1, 2, 3}).Return([]models.Product{
		{ID: 1, Name: "Mug", Price: decimal.RequireFromString("9.99")},
		{ID: 2, Name: "Shirt", Price: decimal.RequireFromString("25.00")},
		{ID: 3, Name: "Sticker", Price: decimal.RequireFromString("1.50")},
	}, nil)

	var savedItems []models.OrderItem
	orders.On("CreateOrderWithItems", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			savedItems = args.Get(2).([]models.OrderItem)
		})

	publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	req := validOrderRequest(
		CartItem{ID: 1, Quantity: 1},
		CartItem{ID: 2, Quantity: 2},
		CartItem{ID: 3, Quantity: 10},
	)

	resp, err := svc.PlaceOrder(context.Background(), 7, req)
	require.NoError(t, err)

	require.Len(t, savedItems, 3)
	assert.Len(t, resp.Items, 3)
	// 9.99 + 50.00 + 15.00
	assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("74.99")))
}

func TestPlaceOrder_UnknownProductWritesNothing(t *testing.T) {
	svc, catalog, orders, _ := newOrderServiceForTest()

	catalog.On("GetProductsByIDs", mock.Anything, []int64{1, 999}).Return([]models.Product{
		{ID: 1, Name: "Mug", Price: decimal.RequireFromString("9.99")},
	}, nil)

	req := validOrderRequest(CartItem{ID: 1, Quantity: 1}, CartItem{ID: 999, Quantity: 1})

	_, err := svc.PlaceOrder(context.Background(), 7, req)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "999")

	orders.AssertNotCalled(t, "CreateOrderWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_MissingShippingFields(t *testing.T) {
	svc, _, orders, _ := newOrderServiceForTest()

	req := &CreateOrderRequest{
		City:  "Springfield",
		Items: []CartItem{{ID: 1, Quantity: 1}},
	}

	_, err := svc.PlaceOrder(context.Background(), 7, req)
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)

	assert.Contains(t, ve.Fields, "full_name")
	assert.Contains(t, ve.Fields, "address")
	assert.Contains(t, ve.Fields, "postal_code")
	assert.NotContains(t, ve.Fields, "city")

	orders.AssertNotCalled(t, "CreateOrderWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_RejectsEmptyCartAndBadQuantity(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	_, err := svc.PlaceOrder(context.Background(), 7, validOrderRequest())
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "items")

	_, err = svc.PlaceOrder(context.Background(), 7, validOrderRequest(CartItem{ID: 1, Quantity: 0}))
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "items")
}

func TestListOrders_EmptyIsNotAnError(t *testing.T) {
	svc, _, orders, _ := newOrderServiceForTest()

	orders.On("GetOrdersByUserID", mock.Anything, int64(7)).Return([]models.Order{}, nil)

	resp, err := svc.ListOrders(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Empty(t, resp)
}

func TestListOrders_IncludesItems(t *testing.T) {
	svc, _, orders, _ := newOrderServiceForTest()

	orders.On("GetOrdersByUserID", mock.Anything, int64(7)).Return([]models.Order{
		{ID: 2, UserID: 7, TotalPrice: decimal.RequireFromString("19.98")},
		{ID: 1, UserID: 7, TotalPrice: decimal.RequireFromString("5.00")},
	}, nil)
	orders.On("GetOrderItemsByOrderID", mock.Anything, int64(2)).Return([]models.OrderItem{
		{ProductID: 1, ProductName: "Mug", Price: decimal.RequireFromString("9.99"), Quantity: 2},
	}, nil)
	orders.On("GetOrderItemsByOrderID", mock.Anything, int64(1)).Return([]models.OrderItem{}, nil)

	resp, err := svc.ListOrders(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, resp, 2)
	assert.Equal(t, int64(2), resp[0].ID)
	require.Len(t, resp[0].Items, 1)
	assert.Equal(t, "Mug", resp[0].Items[0].ProductName)
	assert.Empty(t, resp[1].Items)
}

func TestMarkPaid_OwnerMismatchIsNotFound(t *testing.T) {
	svc, _, orders, publisher := newOrderServiceForTest()

	orders.On("MarkOrderPaid", mock.Anything, int64(8), int64(1)).
		Return(nil, fmt.Errorf("order 1: %w", store.ErrNotFound))

	err := svc.MarkPaid(context.Background(), 8, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	publisher.AssertNotCalled(t, "PublishOrderPaid", mock.Anything, mock.Anything)
}

func TestMarkPaid_RepeatCallsSucceed(t *testing.T) {
	svc, _, orders, publisher := newOrderServiceForTest()

	orders.On("MarkOrderPaid", mock.Anything, int64(7), int64(1)).
		Return(&models.Order{ID: 1, UserID: 7, IsPaid: true}, nil).Twice()
	publisher.On("PublishOrderPaid", mock.Anything, mock.Anything).Return(nil).Twice()

	require.NoError(t, svc.MarkPaid(context.Background(), 7, 1))
	require.NoError(t, svc.MarkPaid(context.Background(), 7, 1))

	orders.AssertExpectations(t)
}
