package main

import (
	"context"
	"errors"
	"os"

	"fteboard/internal/amqp"
	"fteboard/internal/cli"
	"fteboard/internal/log"
	"fteboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(log.Wrap(nil, log.ComponentWorker).Logger)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if !cfg.UsesAMQP() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	logger.Info("Starting fteboard-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)
	// Consuming uses its own connection; the backend client stays the publisher
	// for scheduled imports.
	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP).Logger)
	if err != nil {
		logger.Failure(context.Background(), "Failed to initialize AMQP client", err)
		os.Exit(1)
	}

	appImports := cli.NewApp(res, cfg, logger).Imports
	importWorker := worker.NewImportWorker(appImports, logger.WithComponent(log.ComponentWorker))

	var scheduler *worker.Scheduler
	if cfg.ImportInterval > 0 {
		scheduler = worker.NewScheduler(appImports, cli.SchedulerConfig(cfg), logger.WithComponent(log.ComponentWorker))
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if scheduler != nil {
			if err := scheduler.Stop(ctx); err != nil {
				logger.Failure(ctx, "Scheduler stop error", err)
			}
		}
		if err := consumer.Close(); err != nil {
			logger.Failure(ctx, "AMQP close error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Failure(ctx, "Backend cleanup error", err)
		}
	})

	// Imports left unfinished by a previous process are re-run before
	// consuming new requests.
	if _, err := appImports.Resume(ctx); err != nil {
		logger.Failure(ctx, "Failed to resume imports", err)
	}

	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			logger.Failure(ctx, "Failed to start import scheduler", err)
		}
	}

	go func() {
		err := consumer.ConsumeImportRequests(ctx, importWorker.HandleImportRequest)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Failure(ctx, "Message consumption failed", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
