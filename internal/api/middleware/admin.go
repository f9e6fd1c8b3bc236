package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
)

// RequireAdmin only lets accounts with the admin flag through. It must run
// after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account := CurrentAccount(c)
			if account == nil || !account.IsAdmin {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
