// Package fte derives full-time-equivalent figures from tracked hours.
package fte

import (
	"sort"

	"fteboard/internal/core"
)

// WorkingTime answers how many working hours a month has.
type WorkingTime interface {
	WorkingHoursForPeriod(from, to core.Date) int
}

// PersonMonthlyFTE is one person's FTE in one month.
type PersonMonthlyFTE struct {
	PersonName       string   `json:"personName"`
	Year             int      `json:"year"`
	Month            int      `json:"month"`
	TrackedHours     float64  `json:"trackedHours"`
	WorkingHours     int      `json:"workingHours"`
	FTE              float64  `json:"fte"`
	PlannedFTE       *float64 `json:"plannedFte,omitempty"`
	DeviationPercent *float64 `json:"deviationPercent,omitempty"`
}

// Stats summarises a team's FTE figures.
type Stats struct {
	TotalFTE        float64 `json:"totalFte"`
	AverageFTE      float64 `json:"averageFte"`
	HighestFTE      float64 `json:"highestFte"`
	LowestFTE       float64 `json:"lowestFte"`
	TeamMemberCount int     `json:"teamMemberCount"`
}

// CalculateFTE returns tracked/working rounded to two decimals, or 0 when
// there are no working hours.
func CalculateFTE(trackedHours, workingHours float64) float64 {
	if workingHours == 0 {
		return 0
	}
	return core.Round2(trackedHours / workingHours)
}

// Deviation returns the percentage difference of actual against planned FTE
// rounded to one decimal, or 0 when nothing is planned.
func Deviation(actual, planned float64) float64 {
	if planned <= 0 {
		return 0
	}
	return core.Round1((actual - planned) / planned * 100)
}

// TeamMonthlyFTE sums each person's hours in the month and derives their FTE.
// When planned holds a value for a person, the planned FTE and deviation are
// filled in. The result is ordered by person name.
func TeamMonthlyFTE(entries []core.TimesheetEntry, year, month int, planned map[string]float64, wt WorkingTime) []PersonMonthlyFTE {
	key := core.MonthKey{Year: year, Month: month}
	workingHours := wt.WorkingHoursForPeriod(key.Start(), key.End())

	hours := make(map[string]float64)
	for _, e := range entries {
		if e.InMonth(year, month) {
			hours[e.PersonName] += e.Hours
		}
	}

	out := make([]PersonMonthlyFTE, 0, len(hours))
	for person, h := range hours {
		row := PersonMonthlyFTE{
			PersonName:   person,
			Year:         year,
			Month:        month,
			TrackedHours: core.Round2(h),
			WorkingHours: workingHours,
			FTE:          CalculateFTE(h, float64(workingHours)),
		}
		if p, ok := planned[person]; ok {
			p := p
			dev := Deviation(row.FTE, p)
			row.PlannedFTE = &p
			row.DeviationPercent = &dev
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonName < out[j].PersonName })
	return out
}

// CalculateStats totals the individual FTEs. The total is a plain sum of
// per-person FTE, not an hours-weighted figure.
func CalculateStats(rows []PersonMonthlyFTE) Stats {
	if len(rows) == 0 {
		return Stats{}
	}
	s := Stats{HighestFTE: rows[0].FTE, LowestFTE: rows[0].FTE, TeamMemberCount: len(rows)}
	total := 0.0
	for _, r := range rows {
		total += r.FTE
		if r.FTE > s.HighestFTE {
			s.HighestFTE = r.FTE
		}
		if r.FTE < s.LowestFTE {
			s.LowestFTE = r.FTE
		}
	}
	s.TotalFTE = core.Round2(total)
	s.AverageFTE = core.Round2(total / float64(len(rows)))
	return s
}
