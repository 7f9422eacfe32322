package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fteboard/internal/cache"
	"fteboard/internal/cli"
	apphttp "fteboard/internal/http"
	"fteboard/internal/log"
	"fteboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(log.Wrap(nil, log.ComponentApp).Logger)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	res := cli.InitBackend(context.Background(), logger, cfg)
	app := cli.NewApp(res, cfg, logger)

	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(app.Reports.Cache())

	// Without a broker the server resumes and schedules imports itself.
	var scheduler *worker.Scheduler
	if res.AMQP == nil && cfg.ImportInterval > 0 {
		scheduler = worker.NewScheduler(app.Imports, cli.SchedulerConfig(cfg), logger.WithComponent(log.ComponentWorker))
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	}, apphttp.Services{
		Reports:  app.Reports,
		Planning: app.Planning,
		Imports:  app.Imports,
		Store:    res.Store,
	})

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Failure(ctx, "Server shutdown error", err)
		}
		if scheduler != nil {
			if err := scheduler.Stop(ctx); err != nil {
				logger.Failure(ctx, "Scheduler stop error", err)
			}
		}
		cacheManager.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Failure(ctx, "Backend cleanup error", err)
		}
	})

	cacheManager.StartCleanup(ctx, time.Minute)
	if res.AMQP == nil {
		if n, err := app.Imports.Resume(ctx); err != nil {
			logger.Failure(ctx, "Failed to resume imports", err)
		} else if n > 0 {
			logger.Info("Resumed imports", "count", n)
		}
	}
	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			logger.Failure(ctx, "Failed to start import scheduler", err)
		}
	}

	logger.Info("Starting fteboard server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldSource, cfg.ImportSource,
		log.FieldCountry, cfg.HolidayCountry,
		"amqp", res.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Failure(ctx, "Server error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
