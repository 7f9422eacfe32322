package core

import (
	"fmt"
	"strings"
)

// ValidateFTE checks the planned FTE bounds.
func ValidateFTE(v float64) error {
	if v < 0 || v > 2 {
		return fmt.Errorf("%w: %v", ErrInvalidFTE, v)
	}
	return nil
}

func (r PlannedFTERecord) Validate() error {
	if strings.TrimSpace(r.PersonName) == "" {
		return fmt.Errorf("person name is required")
	}
	if err := ValidateFTE(r.FTEValue); err != nil {
		return err
	}
	if r.ValidFrom.IsZero() {
		return fmt.Errorf("valid from: %w", ErrInvalidDate)
	}
	if r.ValidTo != nil && r.ValidTo.Before(r.ValidFrom) {
		return ErrInvalidRange
	}
	return nil
}

// ApplyPlannedFTE prepares a new planned FTE version for a person.
//
// If the person has an open record starting before next, the returned record
// is that open record closed on the day before next starts; the caller
// persists it together with next. A nil record means nothing has to be closed.
// An open record starting on or after next, or any closed record intersecting
// next's validity, yields ErrPlannedFTEOverlap.
func ApplyPlannedFTE(existing []PlannedFTERecord, next PlannedFTERecord) (*PlannedFTERecord, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}

	end := farFuture
	if next.ValidTo != nil {
		end = *next.ValidTo
	}

	var closed *PlannedFTERecord
	for _, r := range existing {
		if r.PersonName != next.PersonName {
			continue
		}
		if r.IsOpen() {
			if !r.ValidFrom.Before(next.ValidFrom) {
				return nil, fmt.Errorf("%w: open record from %s", ErrPlannedFTEOverlap, r.ValidFrom)
			}
			if closed != nil {
				return nil, fmt.Errorf("%w: more than one open record", ErrPlannedFTEOverlap)
			}
			to := next.ValidFrom.AddDays(-1)
			c := r
			c.ValidTo = &to
			closed = &c
			continue
		}
		if r.Overlaps(next.ValidFrom, end) {
			return nil, fmt.Errorf("%w: record %s..%s", ErrPlannedFTEOverlap, r.ValidFrom, r.ValidTo)
		}
	}
	return closed, nil
}

var farFuture = NewDate(9999, 12, 31)
