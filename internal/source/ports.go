// Package source defines the producers of timesheet rows and the row parser
// they share.
package source

import (
	"context"
	"errors"

	"fteboard/internal/core"
)

// ErrUnknownSource is returned when an import names a source that is not configured.
var ErrUnknownSource = errors.New("unknown import source")

// TimesheetSource yields clean, validated timesheet entries for a date range.
type TimesheetSource interface {
	Name() string
	FetchEntries(ctx context.Context, from, to core.Date) (Batch, error)
}

// RowError describes a rejected input row. Row is 1-based and counts the
// header row, so it matches what a spreadsheet user sees.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Batch is the outcome of reading one source range.
type Batch struct {
	Entries  []core.TimesheetEntry `json:"entries"`
	Rejected []RowError            `json:"rejected,omitempty"`
}
