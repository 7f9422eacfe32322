// Package memory is an in-process timesheet source fed from a slice or a
// JSON seed file.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"fteboard/internal/core"
	"fteboard/internal/source"
)

const Name = "memory"

type Source struct {
	mu      sync.Mutex
	entries []core.TimesheetEntry
}

var _ source.TimesheetSource = (*Source)(nil)

func New(entries ...core.TimesheetEntry) *Source {
	return &Source{entries: append([]core.TimesheetEntry(nil), entries...)}
}

// NewFromFile loads a JSON array of timesheet entries. An empty path yields
// an empty source.
func NewFromFile(path string) (*Source, error) {
	if path == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var entries []core.TimesheetEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(entries...), nil
}

func (s *Source) Name() string { return Name }

// Add appends entries for later fetches.
func (s *Source) Add(entries ...core.TimesheetEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
}

// FetchEntries returns the stored entries within [from, to]. Entries that
// fail validation are reported by their 1-based position in the seed.
func (s *Source) FetchEntries(_ context.Context, from, to core.Date) (source.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := source.Batch{Entries: make([]core.TimesheetEntry, 0, len(s.entries))}
	for i, e := range s.entries {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		if err := core.ValidateStruct(e); err != nil {
			batch.Rejected = append(batch.Rejected, source.RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		batch.Entries = append(batch.Entries, e)
	}
	return batch, nil
}
