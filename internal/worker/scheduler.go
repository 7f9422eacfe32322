package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fteboard/internal/core"
	"fteboard/internal/log"
)

// ImportRequester starts imports for a date range.
type ImportRequester interface {
	Request(ctx context.Context, source string, from, to core.Date) (core.ImportRun, error)
}

// SchedulerConfig controls the periodic re-import.
type SchedulerConfig struct {
	// Interval between imports. Zero disables the scheduler.
	Interval time.Duration
	// LookbackMonths is how many whole months before the current one are
	// re-imported alongside it.
	LookbackMonths int
	// Source names the import source; empty uses the default.
	Source string
}

// DefaultSchedulerConfig returns an hourly re-import of the current and
// previous month.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Interval: time.Hour, LookbackMonths: 1}
}

// Scheduler periodically re-imports a trailing window, so edits to recent
// timesheets reach the store without a manual import.
type Scheduler struct {
	imports ImportRequester
	config  SchedulerConfig
	logger  *log.Logger
	now     func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(imports ImportRequester, config SchedulerConfig, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentWorker)
	}
	return &Scheduler{imports: imports, config: config, logger: logger, now: time.Now}
}

// LookbackRange returns the first day of the month lookback months before
// now, and today.
func LookbackRange(now time.Time, lookbackMonths int) (core.Date, core.Date) {
	if lookbackMonths < 0 {
		lookbackMonths = 0
	}
	now = now.UTC()
	from := core.NewDate(now.Year(), int(now.Month())-lookbackMonths, 1)
	to := core.NewDate(now.Year(), int(now.Month()), now.Day())
	return from, to
}

// Start begins the loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %v", s.config.Interval)
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.logger.InfoContext(ctx, "Import scheduler started",
		"interval", s.config.Interval,
		"lookback_months", s.config.LookbackMonths,
		log.FieldSource, s.config.Source)
	return nil
}

// Stop signals the loop and waits for the current import to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "Import scheduler stopped")
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Import scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

// IsRunning returns whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce requests one import of the lookback window.
func (s *Scheduler) RunOnce(ctx context.Context) {
	from, to := LookbackRange(s.now(), s.config.LookbackMonths)
	run, err := s.imports.Request(ctx, s.config.Source, from, to)
	if err != nil {
		s.logger.Failure(ctx, "Scheduled import failed", err,
			log.FieldDateFrom, from,
			log.FieldDateTo, to)
		return
	}
	s.logger.InfoContext(ctx, "Scheduled import requested",
		log.FieldImportID, run.ID,
		log.FieldDateFrom, from,
		log.FieldDateTo, to,
		"status", run.Status)
}
