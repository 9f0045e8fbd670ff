package service

import (
	"context"
	"errors"
	"fmt"

	"shop-backend/internal/models"
	"shop-backend/internal/store"
	"shop-backend/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService serves read-only product browsing
type CatalogService struct {
	store  CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogStore CatalogStore) *CatalogService {
	return &CatalogService{
		store:  catalogStore,
		logger: util.GetLogger(),
	}
}

// CategoryResponse is the wire shape for a category
type CategoryResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Image *string `json:"image"`
}

// ProductResponse is the wire shape for a single product
type ProductResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Image       *string           `json:"image"`
	Stock       int               `json:"stock"`
	Category    *CategoryResponse `json:"category"`
}

// ListProducts returns all active products with their categories
func (s *CatalogService) ListProducts(ctx context.Context) ([]ProductResponse, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.store.GetActiveProducts(ctx)
	if err != nil {
		util.CatalogLookupsTotal.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	categories, err := s.categoriesByID(ctx)
	if err != nil {
		util.CatalogLookupsTotal.WithLabelValues("list", "error").Inc()
		return nil, err
	}

	util.CatalogLookupsTotal.WithLabelValues("list", "ok").Inc()

	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i], categories))
	}
	return out, nil
}

// GetProductBySlug returns a single product or ErrNotFound
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProductBySlug")
	defer span.End()

	product, err := s.store.GetProductBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		util.CatalogLookupsTotal.WithLabelValues("slug", "miss").Inc()
		return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		util.CatalogLookupsTotal.WithLabelValues("slug", "error").Inc()
		return nil, err
	}

	categories, err := s.categoriesByID(ctx)
	if err != nil {
		return nil, err
	}

	util.CatalogLookupsTotal.WithLabelValues("slug", "ok").Inc()

	resp := toProductResponse(product, categories)
	return &resp, nil
}

func (s *CatalogService) categoriesByID(ctx context.Context) (map[int64]models.Category, error) {
	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	byID := make(map[int64]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID, nil
}

func toProductResponse(p *models.Product, categories map[int64]models.Category) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
	if p.Image.Valid {
		img := p.Image.String
		resp.Image = &img
	}
	if p.CategoryID.Valid {
		if c, ok := categories[p.CategoryID.Int64]; ok {
			cr := CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
			if c.Image.Valid {
				img := c.Image.String
				cr.Image = &img
			}
			resp.Category = &cr
		}
	}
	return resp
}
