package storage

import (
	"context"
	"errors"

	"fteboard/internal/core"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// PageSize bounds how many entry rows are read per query.
const PageSize = 1000

// EntryStore holds imported timesheet rows.
type EntryStore interface {
	// ListEntries returns every entry dated within [from, to].
	ListEntries(ctx context.Context, from, to core.Date) ([]core.TimesheetEntry, error)
	// ReplaceEntries atomically deletes the entries of [from, to] and inserts
	// the given ones. It returns the number of inserted rows.
	ReplaceEntries(ctx context.Context, from, to core.Date, entries []core.TimesheetEntry, importID string) (int, error)
}

// KeywordStore manages the activity keyword table.
type KeywordStore interface {
	ListKeywords(ctx context.Context, activeOnly bool) ([]core.ActivityKeyword, error)
	CreateKeyword(ctx context.Context, k core.ActivityKeyword) (core.ActivityKeyword, error)
	SetKeywordActive(ctx context.Context, id int64, active bool) (core.ActivityKeyword, error)
}

// PlannedFTEStore manages versioned planned FTE records.
type PlannedFTEStore interface {
	// ListPlannedFTE returns the records whose validity intersects [from, to].
	ListPlannedFTE(ctx context.Context, from, to core.Date) ([]core.PlannedFTERecord, error)
	// CreatePlannedFTE closes the person's open record, if any, and stores next.
	CreatePlannedFTE(ctx context.Context, next core.PlannedFTERecord) (core.PlannedFTERecord, error)
}

// HolidayStore holds holiday overrides per country.
type HolidayStore interface {
	ListHolidays(ctx context.Context, country string) ([]core.Holiday, error)
	UpsertHoliday(ctx context.Context, h core.Holiday) error
}

// ImportRunStore tracks import runs.
type ImportRunStore interface {
	CreateImportRun(ctx context.Context, run core.ImportRun) error
	UpdateImportRun(ctx context.Context, run core.ImportRun) error
	GetImportRun(ctx context.Context, id uuid.UUID) (core.ImportRun, error)
	// ListImportRuns returns runs newest first, optionally filtered by
	// status. A limit of 0 returns every run.
	ListImportRuns(ctx context.Context, limit int, statuses ...core.ImportStatus) ([]core.ImportRun, error)
}

// Store is the full persistence surface.
type Store interface {
	EntryStore
	KeywordStore
	PlannedFTEStore
	HolidayStore
	ImportRunStore
	Ping(ctx context.Context) error
	Close() error
}

// DefaultKeywords mirrors the keyword seed migration.
var DefaultKeywords = []core.ActivityKeyword{
	{Keyword: "interview", Category: core.CategoryHiring, Active: true},
	{Keyword: "pohovor", Category: core.CategoryHiring, Active: true},
	{Keyword: "nábor", Category: core.CategoryHiring, Active: true},
	{Keyword: "hiring", Category: core.CategoryHiring, Active: true},
	{Keyword: "job", Category: core.CategoryJobs, Active: true},
	{Keyword: "zakázk", Category: core.CategoryJobs, Active: true},
	{Keyword: "nabídk", Category: core.CategoryJobs, Active: true},
	{Keyword: "review", Category: core.CategoryReviews, Active: true},
	{Keyword: "hodnocení", Category: core.CategoryReviews, Active: true},
	{Keyword: "feedback", Category: core.CategoryReviews, Active: true},
	{Keyword: "mentoring", Category: core.CategoryGuiding, Active: true},
	{Keyword: "guiding", Category: core.CategoryGuiding, Active: true},
	{Keyword: "konzultace", Category: core.CategoryGuiding, Active: true},
	{Keyword: "workshop", Category: core.CategoryGuiding, Active: true},
}
