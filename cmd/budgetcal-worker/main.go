package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetcal/internal/amqp"
	"budgetcal/internal/auth"
	"budgetcal/internal/cache"
	"budgetcal/internal/cashflow"
	"budgetcal/internal/cli"
	"budgetcal/internal/config"
	"budgetcal/internal/log"
	"budgetcal/internal/notify"
	"budgetcal/internal/services"
	"budgetcal/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), "budgetcal-worker")
	logger.Info("Starting budgetcal-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx := context.Background()
	defaults := cli.LoadSettingsDefaults(logger, cfg)
	backend := cli.OpenBackend(startCtx, logger, cfg)

	projectionCache := cache.NewLRUCache[cashflow.Projection](cfg.ProjectionCacheSize, cfg.ProjectionCacheTTL)
	caches := cache.NewManager(logger.Logger)
	caches.Register(projectionCache)
	caches.StartCleanup(time.Minute)

	projections := services.NewProjectionService(backend.Store, projectionCache, defaults,
		logger.WithComponent(log.ComponentProjection))

	var alerter worker.Alerter
	if cfg.AlertsEnabled() {
		alerter = notify.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.AlertFrom,
			logger.WithComponent(log.ComponentNotify))
		logger.Info("Risk alerts enabled", "smtp_host", cfg.SMTPHost)
	} else {
		logger.Info("Risk alerts disabled - no SMTP_HOST provided")
	}

	directory, err := newDirectory(startCtx, cfg)
	if err != nil {
		logger.Error("Failed to initialize user directory", log.FieldError, err)
		os.Exit(1)
	}

	risk := worker.NewRiskWorker(projections, backend.Store, worker.Config{
		Threshold:   cfg.RiskThreshold,
		Concurrency: cfg.WorkerConcurrency,
		Alerter:     alerter,
		Directory:   directory,
		Logger:      logger.WithComponent(log.ComponentWorker),
	})

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
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

	// Catch up on anything that changed while the worker was down.
	if res, err := risk.Sweep(ctx); err != nil {
		logger.Error("Startup sweep failed", log.FieldError, err)
	} else {
		logger.Info("Startup sweep completed",
			"users", res.Users,
			"at_risk", res.AtRisk,
			"alerted", res.Alerted,
			"failed", res.Failed)
	}

	scheduler, err := risk.Schedule(ctx, cfg.RiskSweepSchedule)
	if err != nil {
		logger.Error("Failed to schedule risk sweep", log.FieldError, err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	if amqpClient != nil {
		go func() {
			if err := amqpClient.ConsumeEventsChanged(ctx, risk.HandleEventsChanged); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("budgetcal-worker stopped")
}

func newDirectory(ctx context.Context, cfg *config.Config) (auth.Directory, error) {
	if cfg.AuthMode == config.AuthModeFirebase {
		return auth.NewFirebaseAuth(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
	}
	return auth.DevAuth{}, nil
}
