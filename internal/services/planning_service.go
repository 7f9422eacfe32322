package services

import (
	"context"
	"fmt"
	"strings"

	"fteboard/internal/core"
	"fteboard/internal/log"
	"fteboard/internal/storage"
)

// PlanningStore is the writable reference data behind reports.
type PlanningStore interface {
	storage.KeywordStore
	storage.PlannedFTEStore
	storage.HolidayStore
}

// PlanningService manages planned FTE versions, activity keywords and
// holiday overrides. Every successful write calls the change hook so cached
// reports are dropped.
type PlanningService struct {
	store    PlanningStore
	country  string
	onChange func()
	logger   *log.Logger
}

func NewPlanningService(store PlanningStore, country string, onChange func(), logger *log.Logger) *PlanningService {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentReport)
	}
	if onChange == nil {
		onChange = func() {}
	}
	return &PlanningService{store: store, country: strings.ToUpper(country), onChange: onChange, logger: logger}
}

var (
	allTimeFrom = core.NewDate(1, 1, 1)
	allTimeTo   = core.NewDate(9999, 12, 31)
)

// PlannedFTE lists the records overlapping [from, to]. Zero bounds are open.
func (s *PlanningService) PlannedFTE(ctx context.Context, from, to core.Date) ([]core.PlannedFTERecord, error) {
	if from.IsZero() {
		from = allTimeFrom
	}
	if to.IsZero() {
		to = allTimeTo
	}
	if err := core.ValidateRange(from, to); err != nil {
		return nil, err
	}
	return s.store.ListPlannedFTE(ctx, from, to)
}

// SetPlannedFTE stores a new version, closing the person's open record.
func (s *PlanningService) SetPlannedFTE(ctx context.Context, rec core.PlannedFTERecord) (core.PlannedFTERecord, error) {
	rec.PersonName = strings.TrimSpace(rec.PersonName)
	if err := core.ValidateStruct(rec); err != nil {
		return rec, err
	}
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	stored, err := s.store.CreatePlannedFTE(ctx, rec)
	if err != nil {
		return rec, fmt.Errorf("create planned fte: %w", err)
	}
	s.onChange()
	return stored, nil
}

// Keywords lists the keyword table.
func (s *PlanningService) Keywords(ctx context.Context, activeOnly bool) ([]core.ActivityKeyword, error) {
	return s.store.ListKeywords(ctx, activeOnly)
}

// AddKeyword stores a new active keyword. The category accepts any spelling
// core.ParseCategory understands.
func (s *PlanningService) AddKeyword(ctx context.Context, keyword, category string) (core.ActivityKeyword, error) {
	cat, err := core.ParseCategory(category)
	if err != nil {
		return core.ActivityKeyword{}, fmt.Errorf("%w: %q", err, category)
	}
	k := core.ActivityKeyword{
		Keyword:  strings.ToLower(keyword),
		Category: cat,
		Active:   true,
	}
	if err := k.Validate(); err != nil {
		return k, err
	}
	stored, err := s.store.CreateKeyword(ctx, k)
	if err != nil {
		return k, fmt.Errorf("create keyword: %w", err)
	}
	s.logger.InfoContext(ctx, "Keyword added", "keyword", stored.Keyword, log.FieldCategory, stored.Category)
	s.onChange()
	return stored, nil
}

// SetKeywordActive toggles a keyword in or out of the classification snapshot.
func (s *PlanningService) SetKeywordActive(ctx context.Context, id int64, active bool) (core.ActivityKeyword, error) {
	k, err := s.store.SetKeywordActive(ctx, id, active)
	if err != nil {
		return k, err
	}
	s.onChange()
	return k, nil
}

// Holidays lists the stored overrides of a country, the service's country
// when empty.
func (s *PlanningService) Holidays(ctx context.Context, country string) ([]core.Holiday, error) {
	if country == "" {
		country = s.country
	}
	return s.store.ListHolidays(ctx, strings.ToUpper(country))
}

// AddHoliday stores or renames a holiday override.
func (s *PlanningService) AddHoliday(ctx context.Context, h core.Holiday) (core.Holiday, error) {
	h.Name = strings.TrimSpace(h.Name)
	h.Country = strings.ToUpper(strings.TrimSpace(h.Country))
	if h.Country == "" {
		h.Country = s.country
	}
	if h.Date.IsZero() {
		return h, core.ErrInvalidDate
	}
	if h.Name == "" {
		return h, &core.ValidationError{Fields: []string{"name: required"}}
	}
	if err := s.store.UpsertHoliday(ctx, h); err != nil {
		return h, err
	}
	s.logger.InfoContext(ctx, "Holiday override stored", log.FieldCountry, h.Country, "date", h.Date, "name", h.Name)
	s.onChange()
	return h, nil
}
