package web

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	infrahttp "github.com/99minutos/storefront/internal/infrastructure/http"
	"github.com/99minutos/storefront/internal/infrastructure/http/handlers"
)

type RouterOptions struct {
	Logger  zerolog.Logger
	Checks  map[string]handlers.Check
	Metrics bool
}

// NewRouter builds the dashboard server: shared middleware and health
// probes plus the HTML pages.
func NewRouter(h *Handler, renderer echo.Renderer, opts RouterOptions) *echo.Echo {
	e := infrahttp.NewRouter(infrahttp.Options{
		Service:      "dashboard",
		Logger:       opts.Logger,
		Checks:       opts.Checks,
		ErrorHandler: NewErrorHandler(opts.Logger),
		Metrics:      opts.Metrics,
	})
	e.Renderer = renderer
	h.Register(e)
	return e
}
