package backend

import (
	"context"

	"fteboard/internal/amqp"
	"fteboard/internal/calendar"
	"fteboard/internal/source"
	"fteboard/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result bundles everything the binaries wire their services from.
type Result struct {
	Store    storage.Store
	Sources  []source.TimesheetSource
	Holidays calendar.HolidayCalendar
	AMQP     *amqp.Client
	Cleanup  CleanupFunc
}

// Publisher returns the AMQP client as a publisher, or nil when no broker is
// configured.
func (r *Result) Publisher() amqp.Publisher {
	if r.AMQP == nil {
		return nil
	}
	return r.AMQP
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Import source
	Source    SourceType
	SeedPath  string
	XLSXPath  string
	XLSXSheet string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleTimesheetSheet     string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	HolidayCountry string
}

// BackendType represents the type of store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// SourceType names an import source implementation.
type SourceType string

const (
	MemorySource SourceType = "memory"
	GoogleSource SourceType = "google"
	XLSXSource   SourceType = "xlsx"
)

func (st SourceType) IsValid() bool {
	switch st {
	case MemorySource, GoogleSource, XLSXSource:
		return true
	default:
		return false
	}
}
