package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
)

// AccountKey is the echo context key under which Auth stores the caller.
const AccountKey = "account"

// TokenResolver turns a bearer token into the account it was issued to.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Account, error)
}

// Auth validates the bearer token and injects the resolved account into context.
func Auth(resolver TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrInvalidToken
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrInvalidToken
			}

			account, err := resolver.Resolve(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				// A valid token naming a deleted account surfaces as
				// domain.ErrAccountNotFound and is rendered as 404.
				return err
			}

			c.Set(AccountKey, account)
			return next(c)
		}
	}
}

// CurrentAccount returns the account stored by Auth, or nil.
func CurrentAccount(c echo.Context) *domain.Account {
	account, _ := c.Get(AccountKey).(*domain.Account)
	return account
}
