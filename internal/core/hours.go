// Package core provides hour parsing and rounding utilities.
//
// This file contains functions for parsing tracked hours from spreadsheet
// cells and rounding derived ratios for display.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidHours is returned when a cell cannot be read as hours.
var ErrInvalidHours = errors.New("invalid hours")

// ParseHours converts a decimal string to hours.
//
// It accepts both dot (7.5) and comma (7,5) decimal separators, as Czech
// exports use the latter. Negative values and values above 24 are rejected.
//
// Examples:
//
//	ParseHours("7.5") -> 7.5, nil
//	ParseHours("7,5") -> 7.5, nil
//	ParseHours("")    -> 0, ErrInvalidHours
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidHours
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidHours
	}
	if v < 0 || v > 24 {
		return 0, ErrInvalidHours
	}
	return v, nil
}

// Round rounds x half-up at the given number of decimals. Halves round
// towards positive infinity, so Round(-0.125, 2) is -0.12.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(x*p+0.5) / p
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 { return Round(x, 1) }

// Round2 rounds to two decimal places.
func Round2(x float64) float64 { return Round(x, 2) }
