// Command order-service places orders against the product service and keeps
// the order history.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
	"github.com/99minutos/storefront/internal/infrastructure/client"
	"github.com/99minutos/storefront/internal/infrastructure/config"
	"github.com/99minutos/storefront/internal/infrastructure/db/mongo"
	"github.com/99minutos/storefront/internal/infrastructure/db/sqlite"
	infrahttp "github.com/99minutos/storefront/internal/infrastructure/http"
	"github.com/99minutos/storefront/internal/infrastructure/http/handlers"
	"github.com/99minutos/storefront/internal/infrastructure/metrics"
	"github.com/99minutos/storefront/internal/infrastructure/queue"
	"github.com/99minutos/storefront/pkg/logger"
)

const (
	serviceName = "order-service"
	defaultPort = "8003"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load[config.OrderService](ctx)
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
		log.Fatal().Err(err).Msg("order-service stopped")
	}
	log.Info().Msg("order-service stopped gracefully")
}

func run(ctx context.Context, cfg *config.OrderService, log zerolog.Logger) error {
	db, err := sqlite.OpenStore(ctx, cfg.DBPath, sqlite.StoreOrders)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog := client.NewCatalogClient(cfg.ProductServiceURL, cfg.CatalogTimeout)
	checks := map[string]handlers.Check{
		"sqlite":          db.PingContext,
		"product-service": catalog.Ping,
	}

	var events ports.OrderEventPublisher
	if cfg.Mongo.URI != "" {
		mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(disconnectCtx)
		}()
		checks["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }

		auditCtx, stopAudit := context.WithCancel(ctx)
		dispatcher := queue.NewDispatcher(cfg.AuditWorkers, mongo.NewEventRepository(mongoDB), log)
		dispatcher.Start(auditCtx)
		defer func() {
			stopAudit()
			dispatcher.Wait()
		}()
		events = dispatcher
		log.Info().Str("database", cfg.Mongo.Database).Int("workers", cfg.AuditWorkers).Msg("order audit trail enabled")
	}

	orders := service.NewOrderService(catalog, sqlite.NewOrderRepository(db), events, log).
		WithMetrics(metrics.Orders{})

	e := api.NewOrderRouter(orders, api.Options{
		Logger:  log,
		Metrics: true,
		Checks:  checks,
	})

	return infrahttp.Serve(ctx, e, cfg.Addr(defaultPort), log)
}
