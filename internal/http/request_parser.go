// Package http serves the fteboard JSON API.
//
// This file holds the query and body parsing shared by the handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fteboard/internal/core"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// RangeParams holds a parsed inclusive date range.
type RangeParams struct {
	From   core.Date
	To     core.Date
	Strict bool
}

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseRangeParams reads from, to and the optional strict flag. Both dates
// are required.
func ParseRangeParams(query url.Values) (RangeParams, error) {
	var p RangeParams
	var err error

	fromStr := strings.TrimSpace(query.Get("from"))
	toStr := strings.TrimSpace(query.Get("to"))
	if fromStr == "" || toStr == "" {
		return p, fmt.Errorf("%w: from and to are required", errBadParam)
	}
	if p.From, err = core.ParseDate(fromStr); err != nil {
		return p, err
	}
	if p.To, err = core.ParseDate(toStr); err != nil {
		return p, err
	}
	if err := core.ValidateRange(p.From, p.To); err != nil {
		return p, err
	}
	if p.Strict, err = parseBool(query.Get("strict")); err != nil {
		return p, err
	}
	return p, nil
}

// ParseMonthParams extracts year and month from query parameters, using the
// current month for missing values.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return params, fmt.Errorf("%w: invalid year %q", errBadParam, v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return params, fmt.Errorf("%w: invalid month %q", errBadParam, v)
		}
		params.Month = m
	}

	return params, nil
}

func parseBool(v string) (bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: invalid boolean %q", errBadParam, v)
	}
	return b, nil
}

// parseLimit reads a positive limit, falling back to def.
func parseLimit(v string, def int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: invalid limit %q", errBadParam, v)
	}
	return n, nil
}

// DecodeJSON reads one JSON value from the request body into v. Unknown
// fields and trailing data are rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadParam, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadParam)
	}
	return nil
}
