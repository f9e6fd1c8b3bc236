// Command dashboard serves the storefront web pages. It keeps browser
// sessions in Redis and talks to the three services over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/infrastructure/client"
	"github.com/99minutos/storefront/internal/infrastructure/config"
	"github.com/99minutos/storefront/internal/infrastructure/db/redis"
	infrahttp "github.com/99minutos/storefront/internal/infrastructure/http"
	"github.com/99minutos/storefront/internal/infrastructure/http/handlers"
	"github.com/99minutos/storefront/internal/web"
	"github.com/99minutos/storefront/pkg/logger"
)

const (
	serviceName = "dashboard"
	defaultPort = "8501"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load[config.Dashboard](ctx)
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
		log.Fatal().Err(err).Msg("dashboard stopped")
	}
	log.Info().Msg("dashboard stopped gracefully")
}

func run(ctx context.Context, cfg *config.Dashboard, log zerolog.Logger) error {
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	users := client.NewUsersClient(cfg.UserServiceURL, cfg.RequestTimeout)
	catalog := client.NewCatalogClient(cfg.ProductServiceURL, cfg.RequestTimeout)
	orders := client.NewOrdersClient(cfg.OrderServiceURL, cfg.RequestTimeout)

	h := web.NewHandler(users, catalog, orders, redis.NewSessionStore(rdb, cfg.SessionTTL), log, web.Options{
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	})

	e := web.NewRouter(h, renderer, web.RouterOptions{
		Logger:  log,
		Metrics: true,
		Checks: map[string]handlers.Check{
			"redis":           func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"user-service":    users.Ping,
			"product-service": catalog.Ping,
			"order-service":   orders.Ping,
		},
	})

	return infrahttp.Serve(ctx, e, cfg.Addr(defaultPort), log)
}
