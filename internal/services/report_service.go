package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fteboard/internal/cache"
	"fteboard/internal/calendar"
	"fteboard/internal/classify"
	"fteboard/internal/core"
	"fteboard/internal/fte"
	"fteboard/internal/log"
	"fteboard/internal/period"
	"fteboard/internal/storage"

	"golang.org/x/sync/errgroup"
)

// ReportStore is the read side a report needs.
type ReportStore interface {
	storage.EntryStore
	storage.KeywordStore
	storage.PlannedFTEStore
	storage.HolidayStore
}

// ReportServiceConfig tunes the report cache.
type ReportServiceConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultReportServiceConfig returns the defaults used when config is absent.
func DefaultReportServiceConfig() ReportServiceConfig {
	return ReportServiceConfig{CacheSize: 256, CacheTTL: 5 * time.Minute}
}

// Dataset is the classified input of one report request.
type Dataset struct {
	From     core.Date
	To       core.Date
	Strict   bool
	Entries  []core.CategorizedEntry
	Records  []core.PlannedFTERecord
	Keywords []core.ActivityKeyword
	Engine   *calendar.Engine
}

// MonthlyReport is the per-person FTE of one month.
type MonthlyReport struct {
	WorkingDays calendar.WorkingDaysResult `json:"workingDays"`
	People      []fte.PersonMonthlyFTE     `json:"people"`
	Stats       fte.Stats                  `json:"stats"`
}

// UnpairedReport lists entries the classifier could not pair.
type UnpairedReport struct {
	From         core.Date               `json:"dateFrom"`
	To           core.Date               `json:"dateTo"`
	Entries      []core.CategorizedEntry `json:"entries"`
	Count        int                     `json:"count"`
	Total        int                     `json:"total"`
	QualityScore float64                 `json:"qualityScore"`
}

// WorkingHoursReport is the working time of a date range.
type WorkingHoursReport struct {
	From         core.Date                    `json:"dateFrom"`
	To           core.Date                    `json:"dateTo"`
	WorkingHours int                          `json:"workingHours"`
	Months       []calendar.WorkingDaysResult `json:"months"`
}

// ValidationReport is the strict classification of rows before import.
type ValidationReport struct {
	Entries      []core.CategorizedEntry    `json:"entries"`
	Summary      []classify.CategorySummary `json:"summary"`
	Unpaired     int                        `json:"unpaired"`
	QualityScore float64                    `json:"qualityScore"`
}

// ReportService loads report inputs concurrently, classifies them with a
// keyword snapshot and hands them to the period aggregator.
type ReportService struct {
	store  ReportStore
	base   calendar.HolidayCalendar
	logger *log.Logger

	datasets *cache.LRUCache[*Dataset]

	// generation counts invalidations; a load only caches its dataset when
	// no invalidation happened since it started reading.
	genMu      sync.Mutex
	generation uint64

	mu          sync.Mutex
	engine      *calendar.Engine
	fingerprint string
}

func NewReportService(store ReportStore, holidays calendar.HolidayCalendar, cfg ReportServiceConfig, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentReport)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultReportServiceConfig().CacheSize
	}
	return &ReportService{
		store:    store,
		base:     holidays,
		logger:   logger,
		datasets: cache.NewLRUCache[*Dataset](cfg.CacheSize, cfg.CacheTTL),
		engine:   calendar.NewEngine(holidays),
	}
}

// Cache exposes the dataset cache for periodic cleanup.
func (s *ReportService) Cache() cache.Cleaner { return s.datasets }

// CachedDatasets returns how many datasets are cached.
func (s *ReportService) CachedDatasets() int { return s.datasets.Size() }

// Invalidate drops cached datasets. Call it after any write to the store.
// Loads already reading the store when it is called do not cache their result.
func (s *ReportService) Invalidate() {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generation++
	s.datasets.Purge()
}

func (s *ReportService) currentGeneration() uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generation
}

// cacheDataset caches ds unless the cache was invalidated after gen was read.
func (s *ReportService) cacheDataset(key string, ds *Dataset, gen uint64) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generation != gen {
		return false
	}
	s.datasets.Set(key, ds)
	return true
}

// Engine returns the working-time engine for the current holiday overrides.
// The engine, and with it the monthly memo, is only rebuilt when the stored
// overrides change.
func (s *ReportService) Engine(ctx context.Context) (*calendar.Engine, error) {
	rows, err := s.store.ListHolidays(ctx, s.base.Country())
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return s.engineFor(rows), nil
}

func (s *ReportService) engineFor(rows []core.Holiday) *calendar.Engine {
	fp := holidayFingerprint(rows)
	s.mu.Lock()
	defer s.mu.Unlock()
	if fp != s.fingerprint {
		s.engine = calendar.NewEngine(calendar.WithOverrides(s.base, rows))
		s.fingerprint = fp
		s.logger.Info("Working-time engine rebuilt",
			log.FieldCountry, s.base.Country(),
			"overrides", len(rows))
	}
	return s.engine
}

func holidayFingerprint(rows []core.Holiday) string {
	parts := make([]string, len(rows))
	for i, h := range rows {
		parts[i] = h.Country + "|" + h.Date.String() + "|" + h.Name
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// Load fetches entries, active keywords, planned records and holiday
// overrides for [from, to] concurrently and classifies the entries.
func (s *ReportService) Load(ctx context.Context, from, to core.Date, strict bool) (*Dataset, error) {
	if err := core.ValidateRange(from, to); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%s:%t", from, to, strict)
	if ds, ok := s.datasets.Get(key); ok {
		return ds, nil
	}
	gen := s.currentGeneration()

	var (
		entries  []core.TimesheetEntry
		keywords []core.ActivityKeyword
		records  []core.PlannedFTERecord
		holidays []core.Holiday
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.store.ListEntries(gctx, from, to)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		keywords, err = s.store.ListKeywords(gctx, true)
		if err != nil {
			return fmt.Errorf("list keywords: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.store.ListPlannedFTE(gctx, from, to)
		if err != nil {
			return fmt.Errorf("list planned fte: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		holidays, err = s.store.ListHolidays(gctx, s.base.Country())
		if err != nil {
			return fmt.Errorf("list holidays: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	keywords = classify.ActiveKeywords(keywords)
	ds := &Dataset{
		From:     from,
		To:       to,
		Strict:   strict,
		Entries:  classify.CategorizeTimesheet(entries, keywords, strict),
		Records:  records,
		Keywords: keywords,
		Engine:   s.engineFor(holidays),
	}
	cached := s.cacheDataset(key, ds, gen)

	s.logger.DebugContext(ctx, "Report dataset loaded",
		"cached", cached,
		log.FieldDateFrom, from,
		log.FieldDateTo, to,
		log.FieldStrict, strict,
		log.FieldRows, len(entries),
		"keywords", len(keywords),
		"planned_records", len(records))
	return ds, nil
}

// PeriodReport builds the full FTE report of [from, to].
func (s *ReportService) PeriodReport(ctx context.Context, from, to core.Date, strict bool) (period.Report, error) {
	ds, err := s.Load(ctx, from, to, strict)
	if err != nil {
		return period.Report{}, err
	}
	return period.Build(period.Input{
		From:    ds.From,
		To:      ds.To,
		Entries: ds.Entries,
		Records: ds.Records,
		Time:    ds.Engine,
	}), nil
}

// Categories summarises hours per category over [from, to].
func (s *ReportService) Categories(ctx context.Context, from, to core.Date, strict bool) ([]classify.CategorySummary, error) {
	ds, err := s.Load(ctx, from, to, strict)
	if err != nil {
		return nil, err
	}
	return classify.ActivitySummary(ds.Entries), nil
}

// Unpaired lists the unpaired entries of [from, to] with the quality score.
func (s *ReportService) Unpaired(ctx context.Context, from, to core.Date, strict bool) (UnpairedReport, error) {
	ds, err := s.Load(ctx, from, to, strict)
	if err != nil {
		return UnpairedReport{}, err
	}
	unpaired := classify.UnpairedEntries(ds.Entries)
	return UnpairedReport{
		From:         from,
		To:           to,
		Entries:      unpaired,
		Count:        len(unpaired),
		Total:        len(ds.Entries),
		QualityScore: classify.QualityScore(ds.Entries),
	}, nil
}

// Monthly computes each person's FTE in one month against the planned FTE
// applying in that month.
func (s *ReportService) Monthly(ctx context.Context, year, month int) (MonthlyReport, error) {
	m := core.MonthKey{Year: year, Month: month}
	ds, err := s.Load(ctx, m.Start(), m.End(), false)
	if err != nil {
		return MonthlyReport{}, err
	}

	entries := make([]core.TimesheetEntry, len(ds.Entries))
	seen := make(map[string]bool)
	var people []string
	for i, e := range ds.Entries {
		entries[i] = e.TimesheetEntry
		if !seen[e.PersonName] {
			seen[e.PersonName] = true
			people = append(people, e.PersonName)
		}
	}
	planned := period.PlannedForMonth(ds.Records, people, m)
	rows := fte.TeamMonthlyFTE(entries, year, month, planned, ds.Engine)

	return MonthlyReport{
		WorkingDays: ds.Engine.WorkingDays(year, month),
		People:      rows,
		Stats:       fte.CalculateStats(rows),
	}, nil
}

// WorkingDays returns the working time of one month.
func (s *ReportService) WorkingDays(ctx context.Context, year, month int) (calendar.WorkingDaysResult, error) {
	engine, err := s.Engine(ctx)
	if err != nil {
		return calendar.WorkingDaysResult{}, err
	}
	return engine.WorkingDays(year, month), nil
}

// WorkingHours returns the working hours of every month touched by [from, to].
func (s *ReportService) WorkingHours(ctx context.Context, from, to core.Date) (WorkingHoursReport, error) {
	if err := core.ValidateRange(from, to); err != nil {
		return WorkingHoursReport{}, err
	}
	engine, err := s.Engine(ctx)
	if err != nil {
		return WorkingHoursReport{}, err
	}
	months := engine.MonthsInPeriod(from, to)
	out := WorkingHoursReport{From: from, To: to, Months: make([]calendar.WorkingDaysResult, 0, len(months))}
	for _, m := range months {
		wd := engine.WorkingDays(m.Year, m.Month)
		out.WorkingHours += wd.WorkingHours
		out.Months = append(out.Months, wd)
	}
	return out, nil
}

// Validate classifies rows strictly against the active keywords without
// storing them.
func (s *ReportService) Validate(ctx context.Context, entries []core.TimesheetEntry) (ValidationReport, error) {
	keywords, err := s.store.ListKeywords(ctx, true)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("list keywords: %w", err)
	}
	categorized := classify.CategorizeTimesheet(entries, classify.ActiveKeywords(keywords), true)
	return ValidationReport{
		Entries:      categorized,
		Summary:      classify.ActivitySummary(categorized),
		Unpaired:     classify.CountUnpaired(categorized),
		QualityScore: classify.QualityScore(categorized),
	}, nil
}
