// Command user-service serves registration, token issuance and the current
// account lookup.
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
	"github.com/99minutos/storefront/pkg/logger"
)

const (
	serviceName = "user-service"
	defaultPort = "8001"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load[config.UserService](ctx)
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
		log.Fatal().Err(err).Msg("user-service stopped")
	}
	log.Info().Msg("user-service stopped gracefully")
}

func run(ctx context.Context, cfg *config.UserService, log zerolog.Logger) error {
	db, err := sqlite.OpenStore(ctx, cfg.DBPath, sqlite.StoreUsers)
	if err != nil {
		return err
	}
	defer db.Close()

	accounts := service.NewAuthService(sqlite.NewAccountRepository(db), cfg.JWTSecret, cfg.AccessTokenTTL(), log).
		WithMetrics(metrics.Accounts{})

	e := api.NewUserRouter(accounts, api.Options{
		Logger:  log,
		Metrics: true,
		Checks: map[string]handlers.Check{
			"sqlite": db.PingContext,
		},
	})

	return infrahttp.Serve(ctx, e, cfg.Addr(defaultPort), log)
}
