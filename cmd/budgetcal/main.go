package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetcal/internal/amqp"
	"budgetcal/internal/auth"
	"budgetcal/internal/cache"
	"budgetcal/internal/cashflow"
	"budgetcal/internal/cli"
	"budgetcal/internal/config"
	apphttp "budgetcal/internal/http"
	"budgetcal/internal/log"
	"budgetcal/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), "budgetcal")
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	defaults := cli.LoadSettingsDefaults(logger, cfg)
	backend := cli.OpenBackend(ctx, logger, cfg)

	projectionCache := cache.NewLRUCache[cashflow.Projection](cfg.ProjectionCacheSize, cfg.ProjectionCacheTTL)
	caches := cache.NewManager(logger.Logger)
	caches.Register(projectionCache)
	caches.StartCleanup(time.Minute)

	// Publishing is optional: without a broker the worker only runs its
	// scheduled sweep.
	var (
		publisher  services.Publisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change notifications", log.FieldError, err)
		} else {
			amqpClient, publisher = c, c
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	authenticator, err := newAuthenticator(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize authentication", log.FieldError, err)
		os.Exit(1)
	}

	projections := services.NewProjectionService(backend.Store, projectionCache, defaults,
		logger.WithComponent(log.ComponentProjection))
	events := services.NewEventService(backend.Store, publisher, projections, logger.WithComponent(log.ComponentEvents))
	goals := services.NewGoalService(backend.Store, backend.Store, logger.WithComponent(log.ComponentGoals))

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Auth:               authenticator,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		Ready:              backend.Ping,
	}, projections, events, goals)
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		requests, serverErrors, limited, blocked := srv.Stats()
		logger.Info("Server stats",
			"requests", requests,
			"server_errors", serverErrors,
			"rate_limited", limited,
			"blocked", blocked)
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := backend.Close(); err != nil {
			logger.Warn("Backend close error", log.FieldError, err)
		}
	})

	logger.Info("Starting budgetcal server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"auth_mode", cfg.AuthMode,
		"amqp_enabled", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

func newAuthenticator(ctx context.Context, cfg *config.Config) (auth.Authenticator, error) {
	if cfg.AuthMode == config.AuthModeFirebase {
		return auth.NewFirebaseAuth(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
	}
	return auth.DevAuth{}, nil
}
