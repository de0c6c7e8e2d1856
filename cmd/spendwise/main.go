package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/auth"
	"spendwise/internal/cache"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	"spendwise/internal/core"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)

	// Change events are optional; the dashboard works without a broker.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			amqpClient = c
			publisher = c
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	lists := cache.NewLRUCache[[]core.Expense](cfg.CacheSize, cfg.CacheTTL)
	expenses := services.NewExpenseService(be.Backend, lists, publisher, logger)
	expenses.SetTimeout(cfg.RemoteTimeout)

	authSvc := auth.NewService(be.Backend, be.Backend, cfg.SessionTTL, logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:              ":" + cfg.Port,
		CookieSecure:      cfg.CookieSecure,
		Location:          cfg.Location(),
		RequestsPerMinute: cfg.RateLimitPerMinute,
	}, expenses, authSvc, be.Backend, logger)
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	srv.MaxHeaderBytes = 1 << 16

	caches := cache.NewManager(logger)
	caches.Register(lists)
	caches.Register(srv.DeleteFlows())
	caches.Start(ctx, cfg.CacheSweepInt)

	sweeper := services.NewSessionSweeper(be.Backend, time.Hour, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.Error("Failed to start session sweeper", log.FieldError, err)
		os.Exit(1)
	}

	if n, err := be.Backend.UserCount(ctx); err == nil && n == 0 {
		if cfg.DataBackend == config.BackendMemory {
			logger.Warn("The memory backend starts without users and spendctl cannot reach it; nobody can sign in. Use DATA_BACKEND=sqlite")
		} else {
			logger.Warn("No users yet; create one with: spendctl adduser --user NAME")
		}
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := sweeper.Stop(ctx); err != nil {
			logger.Warn("Session sweeper stop error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := be.Cleanup(); err != nil {
			logger.Warn("Backend close error", log.FieldError, err)
		}
	})

	logger.Info("Starting spendwise server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"change_events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
