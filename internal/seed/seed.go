// Package seed holds the demo fixtures loaded into empty stores.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
)

//go:embed seed.yaml
var fixturesYAML []byte

type Product struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
}

// User is a sample account. Password is the clear text the demo documents;
// only its bcrypt hash is stored.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	Admin    bool   `yaml:"admin"`
}

type Fixtures struct {
	Products []Product `yaml:"products"`
	Users    []User    `yaml:"users"`
}

// Load parses the embedded fixtures.
func Load() (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse seed fixtures: %w", err)
	}
	return &f, nil
}

// ProductCounter is the part of the product repository seeding needs.
type ProductCounter interface {
	Create(ctx context.Context, product *domain.Product) error
	Count(ctx context.Context) (int, error)
}

// SeedProducts inserts the demo catalog when the store is empty and returns
// the number of products created.
func SeedProducts(ctx context.Context, repo ProductCounter, fixtures *Fixtures) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	for _, p := range fixtures.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return 0, fmt.Errorf("seed product %q: price: %w", p.Name, err)
		}
		err = repo.Create(ctx, &domain.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			Stock:       p.Stock,
		})
		if err != nil {
			return 0, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	return len(fixtures.Products), nil
}

// SeedUsers creates the sample accounts that do not exist yet and returns
// how many were created.
func SeedUsers(ctx context.Context, repo ports.AccountRepository, fixtures *Fixtures) (int, error) {
	created := 0
	for _, u := range fixtures.Users {
		hash, err := service.HashPassword(u.Password)
		if err != nil {
			return created, err
		}
		_, err = repo.Create(ctx, &domain.Account{
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: hash,
			IsAdmin:      u.Admin,
			CreatedAt:    time.Now().UTC(),
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateUsername):
			continue
		case err != nil:
			return created, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		created++
	}
	return created, nil
}
