package api

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/storefront/internal/api/docs"
	"github.com/99minutos/storefront/internal/api/handler"
	"github.com/99minutos/storefront/internal/api/middleware"
	"github.com/99minutos/storefront/internal/core/ports"
	infrahttp "github.com/99minutos/storefront/internal/infrastructure/http"
	"github.com/99minutos/storefront/internal/infrastructure/http/handlers"
)

// Options carries what every service router needs besides its domain service.
type Options struct {
	Logger  zerolog.Logger
	Checks  map[string]handlers.Check
	Metrics bool
}

func newBase(service, docsInstance string, opts Options) *echo.Echo {
	e := infrahttp.NewRouter(infrahttp.Options{
		Service:      service,
		Logger:       opts.Logger,
		Checks:       opts.Checks,
		ErrorHandler: NewHTTPErrorHandler(opts.Logger),
		Validator:    handler.NewValidator(),
		Metrics:      opts.Metrics,
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(docsInstance)))
	return e
}

// NewUserRouter builds the account service.
func NewUserRouter(accounts ports.AccountService, opts Options) *echo.Echo {
	e := newBase("user-service", docs.UsersInstance, opts)

	authHandler := handler.NewAuthHandler(accounts)
	auth := middleware.Auth(accounts)

	e.POST("/register", authHandler.Register)
	e.POST("/token", authHandler.Token)
	e.GET("/users/me", authHandler.Me, auth)
	e.GET("/users", authHandler.ListUsers, auth, middleware.RequireAdmin())

	return e
}

// NewProductRouter builds the catalog service.
func NewProductRouter(catalog ports.CatalogService, opts Options) *echo.Echo {
	e := newBase("product-service", docs.ProductsInstance, opts)

	productHandler := handler.NewProductHandler(catalog)

	e.GET("/products", productHandler.List)
	e.POST("/products", productHandler.Create)
	e.GET("/products/:id", productHandler.Get)
	e.PUT("/products/:id", productHandler.Update)
	e.DELETE("/products/:id", productHandler.Delete)
	e.PUT("/products/:id/stock", productHandler.AdjustStock)

	return e
}

// NewOrderRouter builds the order service.
func NewOrderRouter(orders ports.OrderService, opts Options) *echo.Echo {
	e := newBase("order-service", docs.OrdersInstance, opts)

	orderHandler := handler.NewOrderHandler(orders)

	e.POST("/orders", orderHandler.Place)
	e.GET("/orders/:user_id", orderHandler.List)
	e.PUT("/orders/:order_id/status", orderHandler.UpdateStatus)

	return e
}
