// Package memory provides an in-process Store for development and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"fteboard/internal/core"
	"fteboard/internal/storage"

	"github.com/google/uuid"
)

// Store keeps every table in memory behind a single RWMutex.
type Store struct {
	mu       sync.RWMutex
	entries  []core.TimesheetEntry
	keywords []core.ActivityKeyword
	planned  []core.PlannedFTERecord
	holidays map[string]core.Holiday // country|date
	runs     map[uuid.UUID]core.ImportRun
	nextID   int64
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a store seeded with the default keywords.
func NewStore() *Store {
	s := &Store{
		holidays: make(map[string]core.Holiday),
		runs:     make(map[uuid.UUID]core.ImportRun),
	}
	for _, k := range storage.DefaultKeywords {
		s.nextID++
		k.ID = s.nextID
		s.keywords = append(s.keywords, k)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

func inRange(d, from, to core.Date) bool {
	return !d.Before(from) && !d.After(to)
}

func (s *Store) ListEntries(ctx context.Context, from, to core.Date) ([]core.TimesheetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.TimesheetEntry
	for _, e := range s.entries {
		if inRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ReplaceEntries(ctx context.Context, from, to core.Date, entries []core.TimesheetEntry, importID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0:0]
	for _, e := range s.entries {
		if !inRange(e.Date, from, to) {
			kept = append(kept, e)
		}
	}
	s.entries = append(kept, entries...)
	return len(entries), nil
}

func (s *Store) ListKeywords(ctx context.Context, activeOnly bool) ([]core.ActivityKeyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.ActivityKeyword{}
	for _, k := range s.keywords {
		if activeOnly && !k.Active {
			continue
		}
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out, nil
}

func (s *Store) CreateKeyword(ctx context.Context, k core.ActivityKeyword) (core.ActivityKeyword, error) {
	if err := k.Validate(); err != nil {
		return k, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.keywords {
		if existing.Keyword == k.Keyword && existing.Category == k.Category {
			return k, fmt.Errorf("keyword %q already exists for %s", k.Keyword, k.Category)
		}
	}
	s.nextID++
	k.ID = s.nextID
	s.keywords = append(s.keywords, k)
	return k, nil
}

func (s *Store) SetKeywordActive(ctx context.Context, id int64, active bool) (core.ActivityKeyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keywords {
		if s.keywords[i].ID == id {
			s.keywords[i].Active = active
			return s.keywords[i], nil
		}
	}
	return core.ActivityKeyword{}, fmt.Errorf("keyword %d: %w", id, storage.ErrNotFound)
}

func (s *Store) ListPlannedFTE(ctx context.Context, from, to core.Date) ([]core.PlannedFTERecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.PlannedFTERecord{}
	for _, r := range s.planned {
		if r.Overlaps(from, to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PersonName != out[j].PersonName {
			return out[i].PersonName < out[j].PersonName
		}
		return out[i].ValidFrom.Before(out[j].ValidFrom)
	})
	return out, nil
}

func (s *Store) CreatePlannedFTE(ctx context.Context, next core.PlannedFTERecord) (core.PlannedFTERecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed, err := core.ApplyPlannedFTE(s.planned, next)
	if err != nil {
		return next, err
	}
	if closed != nil {
		for i := range s.planned {
			if s.planned[i].ID == closed.ID {
				s.planned[i] = *closed
			}
		}
	}
	s.nextID++
	next.ID = s.nextID
	s.planned = append(s.planned, next)
	return next, nil
}

func holidayKey(country string, d core.Date) string {
	return strings.ToUpper(country) + "|" + d.String()
}

func (s *Store) ListHolidays(ctx context.Context, country string) ([]core.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.Holiday{}
	for _, h := range s.holidays {
		if strings.EqualFold(h.Country, country) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpsertHoliday(ctx context.Context, h core.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.Country = strings.ToUpper(h.Country)
	s.holidays[holidayKey(h.Country, h.Date)] = h
	return nil
}

func (s *Store) CreateImportRun(ctx context.Context, run core.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("import run %s already exists", run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *Store) UpdateImportRun(ctx context.Context, run core.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; !exists {
		return fmt.Errorf("import run %s: %w", run.ID, storage.ErrNotFound)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *Store) GetImportRun(ctx context.Context, id uuid.UUID) (core.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return run, fmt.Errorf("import run %s: %w", id, storage.ErrNotFound)
	}
	return run, nil
}

func (s *Store) ListImportRuns(ctx context.Context, limit int, statuses ...core.ImportStatus) ([]core.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.ImportRun{}
	for _, run := range s.runs {
		if len(statuses) > 0 && !slices.Contains(statuses, run.Status) {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
