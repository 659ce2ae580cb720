// @title                       CRM System API
// @version                     1.0
// @description                 Customer relationship management with role-based access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/crmhub/crm-system/docs"
	"github.com/crmhub/crm-system/internal/api"
	"github.com/crmhub/crm-system/internal/api/handler"
	"github.com/crmhub/crm-system/internal/core/security"
	"github.com/crmhub/crm-system/internal/core/service"
	mongostore "github.com/crmhub/crm-system/internal/infrastructure/db/mongo"
	redisstore "github.com/crmhub/crm-system/internal/infrastructure/db/redis"
	"github.com/crmhub/crm-system/internal/infrastructure/queue"
	"github.com/crmhub/crm-system/internal/pkg/config"
	"github.com/crmhub/crm-system/pkg/logger"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The configured logger depends on cfg, so report with the defaults.
		boot := logger.Init(logger.Options{Service: "crm-system"})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "crm-system",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	// --- Login audit trail ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, mongostore.NewAuditRepository(db), logger.For("audit"))
	audit.Start(workerCtx)

	// --- Services ---
	users := mongostore.NewUserRepository(db)
	customers := mongostore.NewCustomerRepository(db)
	interactions := mongostore.NewInteractionRepository(db)

	authService := service.NewAuthService(
		users,
		security.NewBcryptHasher(bcrypt.DefaultCost),
		security.NewTokenCodec(cfg.Auth.JWTSecret),
		service.AuthOptions{
			TokenTTL:            cfg.Auth.TokenTTL,
			AllowAnonymousAdmin: cfg.Auth.InsecureAnonymousAdmin,
			Audit:               audit,
		},
		log,
	)
	if cfg.Auth.InsecureAnonymousAdmin {
		log.Warn().Msg("AUTH_INSECURE_ANONYMOUS_ADMIN is enabled: requests without a token act as ADMIN")
	}
	if cfg.Auth.SeedDefaultUsers {
		if err := authService.SeedDefaultUsers(ctx); err != nil {
			stopWorkers()
			audit.Wait()
			return err
		}
	}

	customerService := service.NewCustomerService(customers, interactions, logger.For("customer_service"))
	interactionService := service.NewInteractionService(interactions, customers, logger.For("interaction_service"))
	analyticsService := service.NewAnalyticsService(customers, interactions, redisstore.NewStatsCache(rdb), cfg.Analytics.CacheTTL, logger.For("analytics_service"))

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Customers:    customerService,
		Interactions: interactionService,
		Analytics:    analyticsService,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": mongostore.PingFunc(mongoClient),
			"redis":   redisstore.PingFunc(rdb),
		},
		Logger: logger.For("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			stopWorkers()
			audit.Wait()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Workers drain their queues once cancelled.
	stopWorkers()
	audit.Wait()
	log.Info().Msg("shutdown complete")
	return nil
}
