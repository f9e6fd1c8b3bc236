package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCatalogUnavailable = errors.New("error communicating with product service")
)

// Product is a catalog item. Stock never goes below zero.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
}

// ProductNotFoundError names the product id that could not be resolved.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError is returned when a stock decrement would leave a
// product below zero.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Name == "" {
		return "Insufficient stock"
	}
	return "Insufficient stock for product " + e.Name
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
