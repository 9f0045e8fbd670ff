package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"shop-backend/internal/mocks"
	"shop-backend/internal/models"
	"shop-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListProducts_NestsCategory(t *testing.T) {
	catalog := new(mocks.MockCatalogStore)
	svc := NewCatalogService(catalog)

	catalog.On("GetActiveProducts", mock.Anything).Return([]models.Product{
		{
			ID:         1,
			Name:       "Mug",
			Slug:       "mug",
			Price:      decimal.RequireFromString("9.99"),
			CategoryID: sql.NullInt64{Int64: 3, Valid: true},
		},
		{ID: 2, Name: "Mystery Box", Slug: "mystery-box", Price: decimal.RequireFromString("5.00")},
	}, nil)
	catalog.On("GetCategories", mock.Anything).Return([]models.Category{
		{ID: 3, Name: "Kitchen", Slug: "kitchen"},
	}, nil)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Kitchen", products[0].Category.Name)
	assert.Nil(t, products[1].Category)
}

func TestGetProductBySlug_NotFound(t *testing.T) {
	catalog := new(mocks.MockCatalogStore)
	svc := NewCatalogService(catalog)

	catalog.On("GetProductBySlug", mock.Anything, "nonexistent").
		Return(nil, fmt.Errorf("product %q: %w", "nonexistent", store.ErrNotFound))

	_, err := svc.GetProductBySlug(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}
