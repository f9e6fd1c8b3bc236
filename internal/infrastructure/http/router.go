package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/infrastructure/http/handlers"
)

// Options configures the shared parts of every storefront HTTP server.
type Options struct {
	// Service names the binary in health responses and metric subsystems.
	Service string
	Logger  zerolog.Logger
	// Checks are the readiness probes served on /health/ready.
	Checks       map[string]handlers.Check
	ErrorHandler echo.HTTPErrorHandler
	Validator    echo.Validator
	// Metrics enables the echo request metrics and the /metrics endpoint.
	// The collectors live in the default Prometheus registry, so it should
	// only be enabled once per process.
	Metrics bool
}

// NewRouter builds the Echo instance with global middleware and the health
// probes registered. Callers add their own routes on top.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if opts.ErrorHandler != nil {
		e.HTTPErrorHandler = opts.ErrorHandler
	}
	if opts.Validator != nil {
		e.Validator = opts.Validator
	}

	// --- Global middleware ---
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(opts.Logger))

	if opts.Metrics {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem: metricSubsystem(opts.Service),
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler(opts.Service)
	readinessHandler := handlers.NewReadinessHandler(opts.Service, opts.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// metricSubsystem turns "order-service" into "order_service".
func metricSubsystem(service string) string {
	out := []byte(service)
	for i, b := range out {
		if b == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}
