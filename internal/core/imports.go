package core

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus is the lifecycle state of an import run.
type ImportStatus string

const (
	ImportPending ImportStatus = "pending"
	ImportRunning ImportStatus = "running"
	ImportDone    ImportStatus = "done"
	ImportFailed  ImportStatus = "failed"
)

// ImportRun records one replace-by-date-range import of timesheet rows.
type ImportRun struct {
	ID         uuid.UUID    `json:"id"`
	Source     string       `json:"source"`
	DateFrom   Date         `json:"dateFrom"`
	DateTo     Date         `json:"dateTo"`
	Status     ImportStatus `json:"status"`
	Rows       int          `json:"rows"`
	Rejected   int          `json:"rejected"`
	Unpaired   int          `json:"unpaired"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
}

// NewImportRun creates a pending run for the given range.
func NewImportRun(source string, from, to Date) ImportRun {
	return ImportRun{
		ID:        uuid.New(),
		Source:    source,
		DateFrom:  from,
		DateTo:    to,
		Status:    ImportPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Finish marks the run done, or failed when err is non-nil.
func (r *ImportRun) Finish(err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	if err != nil {
		r.Status = ImportFailed
		r.Error = err.Error()
		return
	}
	r.Status = ImportDone
}
