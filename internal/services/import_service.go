package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fteboard/internal/amqp"
	"fteboard/internal/classify"
	"fteboard/internal/core"
	"fteboard/internal/log"
	"fteboard/internal/source"
	"fteboard/internal/storage"

	"github.com/google/uuid"
)

// ImportStore is the persistence an import needs.
type ImportStore interface {
	storage.EntryStore
	storage.KeywordStore
	storage.ImportRunStore
}

// ImportService turns source rows into stored entries. Requests are queued
// on AMQP when a publisher is configured and executed inline otherwise.
type ImportService struct {
	store         ImportStore
	sources       map[string]source.TimesheetSource
	defaultSource string
	publisher     amqp.Publisher
	afterImport   func()
	logger        *log.Logger
	events        *log.StructuredLogger
}

// NewImportService registers the given sources. The first one is the default.
func NewImportService(store ImportStore, publisher amqp.Publisher, logger *log.Logger, sources ...source.TimesheetSource) *ImportService {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentImport)
	}
	s := &ImportService{
		store:     store,
		sources:   make(map[string]source.TimesheetSource, len(sources)),
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
	for _, src := range sources {
		if s.defaultSource == "" {
			s.defaultSource = src.Name()
		}
		s.sources[src.Name()] = src
	}
	return s
}

// OnImported registers a hook run whenever an import has replaced stored
// entries, even if the run fails afterwards.
func (s *ImportService) OnImported(fn func()) {
	s.afterImport = fn
}

// Sources returns the registered source names.
func (s *ImportService) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for n := range s.sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *ImportService) resolve(name string) (source.TimesheetSource, error) {
	if name == "" {
		name = s.defaultSource
	}
	src, ok := s.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", source.ErrUnknownSource, name)
	}
	return src, nil
}

// Request creates an import run for [from, to]. With a publisher the run is
// queued and returned pending; otherwise, or when publishing fails, it is
// executed before returning.
func (s *ImportService) Request(ctx context.Context, sourceName string, from, to core.Date) (core.ImportRun, error) {
	if err := core.ValidateRange(from, to); err != nil {
		return core.ImportRun{}, err
	}
	src, err := s.resolve(sourceName)
	if err != nil {
		return core.ImportRun{}, err
	}

	run := core.NewImportRun(src.Name(), from, to)
	if err := s.store.CreateImportRun(ctx, run); err != nil {
		return core.ImportRun{}, fmt.Errorf("create import run: %w", err)
	}

	if s.publisher != nil {
		err := s.publisher.PublishImportRequest(ctx, amqp.NewImportRequestMessage(run))
		if err == nil {
			return run, nil
		}
		s.logger.Failure(ctx, "Failed to publish import request, running inline", err,
			log.FieldImportID, run.ID)
	}

	return s.Run(ctx, run.ID)
}

// Get returns a stored import run.
func (s *ImportService) Get(ctx context.Context, id uuid.UUID) (core.ImportRun, error) {
	return s.store.GetImportRun(ctx, id)
}

// List returns the most recent import runs.
func (s *ImportService) List(ctx context.Context, limit int) ([]core.ImportRun, error) {
	return s.store.ListImportRuns(ctx, limit)
}

// Resume re-runs imports left pending or running by a previous process. It
// returns how many finished.
func (s *ImportService) Resume(ctx context.Context) (int, error) {
	runs, err := s.store.ListImportRuns(ctx, 0, core.ImportPending, core.ImportRunning)
	if err != nil {
		return 0, fmt.Errorf("list unfinished imports: %w", err)
	}
	done := 0
	for _, run := range runs {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := s.Run(ctx, run.ID); err != nil {
			s.logger.Failure(ctx, "Failed to resume import", err, log.FieldImportID, run.ID)
			continue
		}
		done++
	}
	if len(runs) > 0 {
		s.logger.InfoContext(ctx, "Resumed unfinished imports", "found", len(runs), "finished", done)
	}
	return done, nil
}

// Run executes a pending import run. A run already done is returned as is,
// which makes redelivered requests harmless. Source and store failures are
// recorded on the run; the returned error is non-nil whenever the run did not
// finish.
func (s *ImportService) Run(ctx context.Context, id uuid.UUID) (core.ImportRun, error) {
	run, err := s.store.GetImportRun(ctx, id)
	if err != nil {
		return core.ImportRun{}, fmt.Errorf("get import run: %w", err)
	}
	if run.Status == core.ImportDone {
		return run, nil
	}

	run.Status = core.ImportRunning
	run.Error = ""
	if err := s.store.UpdateImportRun(ctx, run); err != nil {
		return run, fmt.Errorf("mark import running: %w", err)
	}

	runErr := s.execute(ctx, &run)
	run.Finish(runErr)
	if err := s.store.UpdateImportRun(ctx, run); err != nil {
		return run, fmt.Errorf("record import run: %w", errors.Join(runErr, err))
	}

	s.events.LogImportFinished(ctx, run.ID.String(), run.Source, run.Rows, run.Rejected, run.Unpaired, runErr)
	if runErr != nil {
		return run, runErr
	}
	return run, nil
}

func (s *ImportService) execute(ctx context.Context, run *core.ImportRun) error {
	src, err := s.resolve(run.Source)
	if err != nil {
		return err
	}
	batch, err := src.FetchEntries(ctx, run.DateFrom, run.DateTo)
	if err != nil {
		return fmt.Errorf("fetch entries: %w", err)
	}
	run.Rejected = len(batch.Rejected)
	for _, r := range batch.Rejected {
		s.logger.DebugContext(ctx, "Row rejected",
			log.FieldImportID, run.ID,
			"row", r.Row,
			"reason", r.Reason)
	}

	n, err := s.store.ReplaceEntries(ctx, run.DateFrom, run.DateTo, batch.Entries, run.ID.String())
	if err != nil {
		return fmt.Errorf("replace entries: %w", err)
	}
	run.Rows = n
	if s.afterImport != nil {
		s.afterImport()
	}

	keywords, err := s.store.ListKeywords(ctx, true)
	if err != nil {
		return fmt.Errorf("list keywords: %w", err)
	}
	categorized := classify.CategorizeTimesheet(batch.Entries, keywords, true)
	run.Unpaired = classify.CountUnpaired(categorized)
	return nil
}
