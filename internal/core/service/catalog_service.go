package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

type CatalogService struct {
	repo    ports.ProductRepository
	logger  zerolog.Logger
	metrics ports.CatalogMetrics
}

func NewCatalogService(repo ports.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger, metrics: nopMetrics{}}
}

// WithMetrics replaces the default no-op recorder.
func (s *CatalogService) WithMetrics(m ports.CatalogMetrics) *CatalogService {
	s.metrics = m
	return s
}

// List returns a page of products in storage order. Limit defaults to 100 and
// is capped at 1000.
func (s *CatalogService) List(ctx context.Context, in ports.ListProductsInput) ([]domain.Product, error) {
	if in.Skip < 0 {
		return nil, fmt.Errorf("%w: skip must be at least 0", domain.ErrInvalidInput)
	}
	limit := in.Limit
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: limit must be greater than 0", domain.ErrInvalidInput)
	case limit == 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}

	products, err := s.repo.List(ctx, ports.ProductFilter{
		Search: strings.TrimSpace(in.Search),
		Skip:   in.Skip,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")
	return product, nil
}

// Update replaces every writable field of the product.
func (s *CatalogService) Update(ctx context.Context, id int64, in ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

func (s *CatalogService) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	stock, err := s.repo.AdjustStock(ctx, id, delta)
	switch {
	case err == nil:
		s.metrics.StockAdjusted("applied")
	case errors.Is(err, domain.ErrInsufficientStock):
		s.metrics.StockAdjusted("insufficient")
		return 0, err
	case errors.Is(err, domain.ErrProductNotFound):
		s.metrics.StockAdjusted("not_found")
		return 0, err
	default:
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	s.logger.Debug().Int64("product_id", id).Int("delta", delta).Int("stock", stock).Msg("stock adjusted")
	return stock, nil
}

func validateProduct(in ports.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case !in.Price.IsPositive():
		return fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidInput)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must be at least 0", domain.ErrInvalidInput)
	}
	return nil
}
