package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// CatalogClient calls the product service. Transport failures and 5xx
// answers wrap domain.ErrCatalogUnavailable.
type CatalogClient struct {
	base
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{base: newBase(baseURL, timeout, domain.ErrCatalogUnavailable)}
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var dto productDTO
	err := c.do(ctx, request{method: http.MethodGet, path: productPath(id)}, &dto)
	if err != nil {
		if status, _ := statusOf(err); status == http.StatusNotFound {
			return nil, &domain.ProductNotFoundError{ProductID: id}
		}
		return nil, c.unexpected(err)
	}
	return dto.toDomain(), nil
}

// AdjustStock applies delta and returns the new stock level.
func (c *CatalogClient) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	var resp struct {
		NewStock int `json:"new_stock"`
	}
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   productPath(id) + "/stock",
		query:  url.Values{"quantity": {strconv.Itoa(delta)}},
	}, &resp)
	if err != nil {
		switch status, _ := statusOf(err); status {
		case http.StatusNotFound:
			return 0, &domain.ProductNotFoundError{ProductID: id}
		case http.StatusBadRequest:
			return 0, &domain.InsufficientStockError{ProductID: id, Requested: -delta}
		}
		return 0, c.unexpected(err)
	}
	return resp.NewStock, nil
}

func (c *CatalogClient) ListProducts(ctx context.Context, in ports.ListProductsInput) ([]domain.Product, error) {
	q := url.Values{}
	if in.Search != "" {
		q.Set("search", in.Search)
	}
	if in.Skip > 0 {
		q.Set("skip", strconv.Itoa(in.Skip))
	}
	if in.Limit > 0 {
		q.Set("limit", strconv.Itoa(in.Limit))
	}

	var dtos []productDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: q}, &dtos); err != nil {
		return nil, c.unexpected(err)
	}

	products := make([]domain.Product, 0, len(dtos))
	for _, d := range dtos {
		products = append(products, *d.toDomain())
	}
	return products, nil
}

// unexpected folds any answer the catalog contract does not define into
// domain.ErrCatalogUnavailable.
func (c *CatalogClient) unexpected(err error) error {
	if status, apiErr := statusOf(err); status != 0 && status < 500 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUnavailable, status, apiErr.Detail)
	}
	return err
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}
