package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of every calendar date.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar day anchored at 00:00 UTC.
	Date struct {
		time.Time
	}

	// TimesheetEntry is one imported timesheet row. An empty Description
	// stands for a missing one.
	TimesheetEntry struct {
		PersonName   string  `json:"personName" validate:"required"`
		PersonEmail  string  `json:"personEmail,omitempty" validate:"omitempty,email"`
		ProjectName  string  `json:"projectName" validate:"required"`
		ActivityName string  `json:"activityName" validate:"required"`
		Description  string  `json:"description,omitempty"`
		Date         Date    `json:"date" validate:"required"`
		Hours        float64 `json:"hours" validate:"gte=0,lte=24"`
	}

	// CategorizedEntry is a TimesheetEntry with its assigned category.
	CategorizedEntry struct {
		TimesheetEntry
		Category Category `json:"category"`
	}

	// ActivityKeyword maps a case-insensitive substring to a category.
	ActivityKeyword struct {
		ID       int64    `json:"id"`
		Keyword  string   `json:"keyword" validate:"required"`
		Category Category `json:"category" validate:"required"`
		Active   bool     `json:"active"`
	}

	// PlannedFTERecord is one version of a person's planned capacity.
	// ValidTo is inclusive; nil means open-ended.
	PlannedFTERecord struct {
		ID         int64   `json:"id"`
		PersonName string  `json:"personName" validate:"required"`
		FTEValue   float64 `json:"fteValue" validate:"gte=0,lte=2"`
		ValidFrom  Date    `json:"validFrom" validate:"required"`
		ValidTo    *Date   `json:"validTo,omitempty"`
	}

	// Holiday is a public holiday of a country.
	Holiday struct {
		Date    Date   `json:"date"`
		Name    string `json:"name"`
		Country string `json:"country,omitempty"`
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidRange      = errors.New("date range end before start")
	ErrInvalidFTE        = errors.New("planned fte must be between 0 and 2")
	ErrPlannedFTEOverlap = errors.New("planned fte validity overlaps an existing record")
	ErrEmptyKeyword      = errors.New("empty keyword")
	ErrUnknownCategory   = errors.New("unknown category")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD. A longer ISO timestamp is cut to its date part,
// mirroring how exports carry "2025-11-10T00:00:00".
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM prefix used to bucket entries by month.
func (d Date) MonthKey() string {
	return d.String()[:7]
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// MonthStart returns the first day of the month containing d.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// MonthEnd returns the last day of the month containing d.
func (d Date) MonthEnd() Date {
	return NewDate(d.Year(), d.Month()+1, 0)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidateRange checks that from and to are set and ordered.
func ValidateRange(from, to Date) error {
	if from.IsZero() || to.IsZero() {
		return ErrInvalidDate
	}
	if to.Before(from) {
		return ErrInvalidRange
	}
	return nil
}

// InMonth reports whether the entry falls into the given year and month.
func (e TimesheetEntry) InMonth(year, month int) bool {
	return e.Date.Year() == year && e.Date.Month() == month
}

func (k ActivityKeyword) Validate() error {
	if strings.TrimSpace(k.Keyword) == "" {
		return ErrEmptyKeyword
	}
	if !k.Category.IsKeywordCategory() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, k.Category)
	}
	return nil
}

// Overlaps reports whether the record's validity intersects [from, to].
func (r PlannedFTERecord) Overlaps(from, to Date) bool {
	if r.ValidFrom.After(to) {
		return false
	}
	return r.ValidTo == nil || !r.ValidTo.Before(from)
}

// IsOpen reports whether the record has no end date.
func (r PlannedFTERecord) IsOpen() bool {
	return r.ValidTo == nil
}
