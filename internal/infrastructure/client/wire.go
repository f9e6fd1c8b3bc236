package client

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/storefront/internal/core/domain"
)

// Wire shapes of the service APIs. Prices travel as JSON numbers.

type accountDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

func (a accountDTO) toDomain() *domain.Account {
	return &domain.Account{ID: a.ID, Username: a.Username, Email: a.Email, IsAdmin: a.IsAdmin}
}

type productDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p productDTO) toDomain() *domain.Product {
	return &domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.NewFromFloat(p.Price),
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

type orderItemDTO struct {
	ID           int64   `json:"id,omitempty"`
	ProductID    int64   `json:"product_id"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit,omitempty"`
}

type orderDTO struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	TotalAmount float64        `json:"total_amount"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	Items       []orderItemDTO `json:"items"`
}

func (o orderDTO) toDomain() domain.Order {
	lines := make([]domain.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, domain.OrderLine{
			ID:        it.ID,
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: decimal.NewFromFloat(it.PricePerUnit),
		})
	}
	return domain.Order{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: decimal.NewFromFloat(o.TotalAmount),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		Items:       lines,
	}
}

type placeOrderDTO struct {
	UserID int64          `json:"user_id"`
	Items  []orderItemDTO `json:"items"`
}
