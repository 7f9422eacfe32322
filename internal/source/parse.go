package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fteboard/internal/core"
)

// Column identifies a logical timesheet column.
type Column int

const (
	ColPerson Column = iota
	ColEmail
	ColProject
	ColActivity
	ColDescription
	ColDate
	ColHours
	numColumns
)

// DefaultOrder is the column layout assumed when a sheet carries no header
// row: A=person B=email C=project D=activity E=description F=date G=hours.
var DefaultOrder = [numColumns]int{0, 1, 2, 3, 4, 5, 6}

var headerAliases = map[string]Column{
	"person":        ColPerson,
	"person name":   ColPerson,
	"name":          ColPerson,
	"employee":      ColPerson,
	"jméno":         ColPerson,
	"zaměstnanec":   ColPerson,
	"pracovník":     ColPerson,
	"email":         ColEmail,
	"e-mail":        ColEmail,
	"person email":  ColEmail,
	"project":       ColProject,
	"project name":  ColProject,
	"projekt":       ColProject,
	"activity":      ColActivity,
	"activity name": ColActivity,
	"task":          ColActivity,
	"aktivita":      ColActivity,
	"činnost":       ColActivity,
	"description":   ColDescription,
	"note":          ColDescription,
	"popis":         ColDescription,
	"poznámka":      ColDescription,
	"date":          ColDate,
	"day":           ColDate,
	"datum":         ColDate,
	"hours":         ColHours,
	"duration":      ColHours,
	"hodiny":        ColHours,
	"čas":           ColHours,
	"počet hodin":   ColHours,
}

// MatchHeader maps a header row to column positions. It reports false when
// the row does not name at least person, project, activity, date and hours.
func MatchHeader(row []string) ([numColumns]int, bool) {
	var pos [numColumns]int
	for i := range pos {
		pos[i] = -1
	}
	for i, cell := range row {
		col, ok := headerAliases[normalizeHeader(cell)]
		if ok && pos[col] == -1 {
			pos[col] = i
		}
	}
	for _, c := range []Column{ColPerson, ColProject, ColActivity, ColDate, ColHours} {
		if pos[c] == -1 {
			return pos, false
		}
	}
	return pos, true
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", " ", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseRows converts a raw sheet into validated entries. The first row is
// treated as a header when it names the required columns, otherwise
// DefaultOrder applies. Blank rows are skipped silently, rows outside
// [from, to] are skipped, and malformed rows are collected in Rejected.
// A zero from or to leaves that side of the range open.
func ParseRows(rows [][]string, from, to core.Date) Batch {
	batch := Batch{Entries: make([]core.TimesheetEntry, 0, len(rows))}
	if len(rows) == 0 {
		return batch
	}

	pos := DefaultOrder
	start := 0
	if p, ok := MatchHeader(rows[0]); ok {
		pos = p
		start = 1
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		entry, err := parseRow(row, pos)
		if err != nil {
			batch.Rejected = append(batch.Rejected, RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		if !from.IsZero() && entry.Date.Before(from) {
			continue
		}
		if !to.IsZero() && entry.Date.After(to) {
			continue
		}
		batch.Entries = append(batch.Entries, entry)
	}
	return batch
}

func parseRow(row []string, pos [numColumns]int) (core.TimesheetEntry, error) {
	get := func(c Column) string {
		return safeGet(row, pos[c])
	}

	date, err := ParseSheetDate(get(ColDate))
	if err != nil {
		return core.TimesheetEntry{}, fmt.Errorf("parse date: %w", err)
	}
	hours, err := core.ParseHours(get(ColHours))
	if err != nil {
		return core.TimesheetEntry{}, fmt.Errorf("parse hours %q: %w", get(ColHours), err)
	}

	e := core.TimesheetEntry{
		PersonName:   get(ColPerson),
		PersonEmail:  get(ColEmail),
		ProjectName:  get(ColProject),
		ActivityName: get(ColActivity),
		Description:  get(ColDescription),
		Date:         date,
		Hours:        hours,
	}
	if err := core.ValidateStruct(e); err != nil {
		return core.TimesheetEntry{}, err
	}
	return e, nil
}

var dateLayouts = []string{
	core.DateLayout,
	"2.1.2006",
	"02.01.2006",
	"2. 1. 2006",
	"2006/01/02",
}

// spreadsheetEpoch is day zero of spreadsheet serial dates.
var spreadsheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseSheetDate accepts ISO dates (optionally with a time part), Czech
// D.M.YYYY spellings and spreadsheet serial day numbers.
func ParseSheetDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, core.ErrInvalidDate
	}
	if d, err := core.ParseDate(s); err == nil {
		return d, nil
	}
	for _, layout := range dateLayouts[1:] {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f < 2958466 {
		t := spreadsheetEpoch.AddDate(0, 0, int(f))
		return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}

// ToStrings flattens a row of API cell values.
func ToStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
