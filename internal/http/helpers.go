package http

import (
	"errors"
	"net/http"
	"strings"

	"fteboard/internal/core"
	"fteboard/internal/source"
	"fteboard/internal/storage"
)

// errBadParam marks malformed query parameters and request bodies.
var errBadParam = errors.New("bad request")

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, core.ErrInvalidFTE),
		errors.Is(err, core.ErrEmptyKeyword),
		errors.Is(err, core.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, source.ErrUnknownSource),
		errors.Is(err, errBadParam):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrPlannedFTEOverlap):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return stripControl(strings.TrimSpace(s))
}

// stripControl removes control characters other than tab, newline and
// carriage return. Surrounding spaces are kept.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
