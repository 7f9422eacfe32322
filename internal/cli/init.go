// Package cli provides common initialization utilities shared by the
// fteboard binaries.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fteboard/internal/backend"
	"fteboard/internal/config"
	"fteboard/internal/log"
	"fteboard/internal/services"
	"fteboard/internal/worker"
)

// SetupLogger creates the application logger from the configured level and
// format and sets it as the default logger.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Component = component
	if cfg.LogFormat != "" {
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend builds the store, sources, holiday calendar and optional AMQP
// client. It exits the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.Result {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", bcfg.Type, log.FieldSource, bcfg.Source)
		os.Exit(1)
	}
	return res
}

// App holds the services every binary wires from a backend.
type App struct {
	Reports  *services.ReportService
	Planning *services.PlanningService
	Imports  *services.ImportService
}

// NewApp wires the services over res. Writes through the planning and import
// services invalidate the report cache.
func NewApp(res *backend.Result, cfg *config.Config, logger *log.Logger) *App {
	reports := services.NewReportService(res.Store, res.Holidays, services.ReportServiceConfig{
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
	}, logger.WithComponent(log.ComponentReport))
	planning := services.NewPlanningService(res.Store, cfg.HolidayCountry, reports.Invalidate, logger.WithComponent(log.ComponentPlanning))
	imports := services.NewImportService(res.Store, res.Publisher(), logger.WithComponent(log.ComponentImport), res.Sources...)
	imports.OnImported(reports.Invalidate)
	return &App{Reports: reports, Planning: planning, Imports: imports}
}

// SchedulerConfig maps the import settings to the scheduler.
func SchedulerConfig(cfg *config.Config) worker.SchedulerConfig {
	return worker.SchedulerConfig{
		Interval:       cfg.ImportInterval,
		LookbackMonths: cfg.ImportLookbackMonths,
		Source:         cfg.ImportSource,
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// The returned context is cancelled on SIGINT or SIGTERM; cleanup then runs
// with a context bounded by timeout, and done is closed once it returns.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
