// Command product-service serves the catalog and its stock counters.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api"
	"github.com/99minutos/storefront/internal/core/service"
	"github.com/99minutos/storefront/internal/infrastructure/config"
	"github.com/99minutos/storefront/internal/infrastructure/db/sqlite"
	infrahttp "github.com/99minutos/storefront/internal/infrastructure/http"
	"github.com/99minutos/storefront/internal/infrastructure/http/handlers"
	"github.com/99minutos/storefront/internal/infrastructure/metrics"
	"github.com/99minutos/storefront/internal/seed"
	"github.com/99minutos/storefront/pkg/logger"
)

const (
	serviceName = "product-service"
	defaultPort = "8002"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load[config.ProductService](ctx)
	if err != nil {
		l := logger.New(logger.Options{Service: serviceName})
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Service: serviceName,
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Caller:  true,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("product-service stopped")
	}
	log.Info().Msg("product-service stopped gracefully")
}

func run(ctx context.Context, cfg *config.ProductService, log zerolog.Logger) error {
	db, err := sqlite.OpenStore(ctx, cfg.DBPath, sqlite.StoreProducts)
	if err != nil {
		return err
	}
	defer db.Close()

	products := sqlite.NewProductRepository(db)

	if cfg.SeedDemo {
		fixtures, err := seed.Load()
		if err != nil {
			return err
		}
		n, err := seed.SeedProducts(ctx, products, fixtures)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("products", n).Msg("seeded demo catalog")
		}
	}

	catalog := service.NewCatalogService(products, log).WithMetrics(metrics.Catalog{})

	e := api.NewProductRouter(catalog, api.Options{
		Logger:  log,
		Metrics: true,
		Checks: map[string]handlers.Check{
			"sqlite": db.PingContext,
		},
	})

	return infrahttp.Serve(ctx, e, cfg.Addr(defaultPort), log)
}
