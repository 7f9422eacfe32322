package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fteboard/internal/amqp"
	"fteboard/internal/calendar"
	"fteboard/internal/source"
	"fteboard/internal/source/google"
	srcmemory "fteboard/internal/source/memory"
	"fteboard/internal/source/xlsx"
	"fteboard/internal/storage"
	"fteboard/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend builds the store, the import sources, the holiday calendar
// and, when configured, the AMQP client. An unreachable broker is logged and
// skipped so imports fall back to running inline.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	sources, err := f.createSources(ctx, config)
	if err != nil {
		store.Close()
		return nil, err
	}

	res := &Result{
		Store:    store,
		Sources:  sources,
		Holidays: f.holidayCalendar(config.HolidayCountry),
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, imports will run inline", "error", err)
		} else {
			res.AMQP = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if res.AMQP != nil {
			if err := res.AMQP.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := res.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		return errors.Join(errs...)
	}
	return res, nil
}

func (f *DefaultFactory) createStore(config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// createSources returns the configured source first, so it is the default.
// A seed file adds the memory source alongside any other source.
func (f *DefaultFactory) createSources(ctx context.Context, config Config) ([]source.TimesheetSource, error) {
	var sources []source.TimesheetSource

	switch config.Source {
	case GoogleSource:
		cli, err := google.New(ctx, google.Config{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			Sheet:              config.GoogleTimesheetSheet,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
			ServiceAccountFile: config.GoogleServiceAccountFile,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		sources = append(sources, cli)
	case XLSXSource:
		sources = append(sources, xlsx.New(config.XLSXPath, config.XLSXSheet, f.logger))
	}

	if config.Source == MemorySource || config.SeedPath != "" {
		mem, err := srcmemory.NewFromFile(config.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed timesheet: %w", err)
		}
		sources = append(sources, mem)
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	f.logger.Info("Initialized import sources", "sources", names)
	return sources, nil
}

func (f *DefaultFactory) holidayCalendar(country string) calendar.HolidayCalendar {
	if cal, ok := calendar.ForCountry(country); ok {
		return cal
	}
	f.logger.Warn("No built-in holiday calendar, using stored overrides only", "country", country)
	return calendar.NewStatic(country, nil)
}
