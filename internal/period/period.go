// Package period aggregates FTE over multi-month ranges.
//
// Period FTE is always one division of summed hours by summed working hours;
// monthly ratios are never averaged. Planned FTE is weighted per month by the
// month's working hours and only for people who tracked time in that month.
package period

import (
	"sort"

	"fteboard/internal/calendar"
	"fteboard/internal/core"
	"fteboard/internal/fte"
)

// PeriodFTE returns the FTE of all entries over [from, to].
func PeriodFTE(entries []core.TimesheetEntry, from, to core.Date, wt fte.WorkingTime) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.Hours
	}
	return fte.CalculateFTE(total, float64(wt.WorkingHoursForPeriod(from, to)))
}

// SelectRecord picks the person's planned FTE record overlapping
// [monthStart, monthEnd]. When several overlap the one starting latest wins.
func SelectRecord(records []core.PlannedFTERecord, person string, monthStart, monthEnd core.Date) (core.PlannedFTERecord, bool) {
	var best core.PlannedFTERecord
	found := false
	for _, r := range records {
		if r.PersonName != person || !r.Overlaps(monthStart, monthEnd) {
			continue
		}
		if !found || r.ValidFrom.After(best.ValidFrom) {
			best = r
			found = true
		}
	}
	return best, found
}

// PlannedForMonth maps each person to the planned FTE applying in the month.
// People without a record are left out.
func PlannedForMonth(records []core.PlannedFTERecord, people []string, m core.MonthKey) map[string]float64 {
	out := make(map[string]float64, len(people))
	for _, p := range people {
		if r, ok := SelectRecord(records, p, m.Start(), m.End()); ok {
			out[p] = r.FTEValue
		}
	}
	return out
}

type monthBucket struct {
	key    core.MonthKey
	people map[string]float64
}

// byMonth partitions entries into months, summing hours per person.
func byMonth(entries []core.TimesheetEntry) []monthBucket {
	idx := make(map[core.MonthKey]int)
	var out []monthBucket
	for _, e := range entries {
		k := core.MonthKey{Year: e.Date.Year(), Month: e.Date.Month()}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, monthBucket{key: k, people: make(map[string]float64)})
		}
		out[i].people[e.PersonName] += e.Hours
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key.Start().Before(out[j].key.Start()) })
	return out
}

func monthHours(wt fte.WorkingTime, m core.MonthKey) float64 {
	return float64(wt.WorkingHoursForPeriod(m.Start(), m.End()))
}

// PlannedFTEForPeriod returns the team's planned FTE over [from, to],
// weighting each month's summed planned FTE of its active people by the
// month's working hours.
func PlannedFTEForPeriod(entries []core.TimesheetEntry, records []core.PlannedFTERecord, from, to core.Date, wt fte.WorkingTime) float64 {
	periodHours := float64(wt.WorkingHoursForPeriod(from, to))
	if periodHours == 0 {
		return 0
	}
	total := 0.0
	for _, b := range byMonth(entries) {
		monthPlanned := 0.0
		for person := range b.people {
			if r, ok := SelectRecord(records, person, b.key.Start(), b.key.End()); ok {
				monthPlanned += r.FTEValue
			}
		}
		total += monthPlanned * monthHours(wt, b.key)
	}
	return core.Round2(total / periodHours)
}

// PersonPlannedFTE returns each person's planned FTE over [from, to]. The
// accumulated planned hours are divided by the working hours of the whole
// period, so people active in only part of it get a proportionally smaller
// figure. People without any applicable record are absent.
func PersonPlannedFTE(entries []core.TimesheetEntry, records []core.PlannedFTERecord, from, to core.Date, wt fte.WorkingTime) map[string]float64 {
	periodHours := float64(wt.WorkingHoursForPeriod(from, to))
	acc := make(map[string]float64)
	for _, b := range byMonth(entries) {
		mh := monthHours(wt, b.key)
		for person := range b.people {
			if r, ok := SelectRecord(records, person, b.key.Start(), b.key.End()); ok {
				acc[person] += r.FTEValue * mh
			}
		}
	}
	out := make(map[string]float64, len(acc))
	for person, h := range acc {
		if periodHours == 0 {
			out[person] = 0
			continue
		}
		out[person] = core.Round2(h / periodHours)
	}
	return out
}

// Months lists the months of [from, to] plus any month outside it that
// has entries, in order.
func Months(entries []core.TimesheetEntry, from, to core.Date) []core.MonthKey {
	seen := make(map[core.MonthKey]bool)
	var out []core.MonthKey
	for _, m := range calendar.MonthsInPeriod(from, to) {
		seen[m] = true
		out = append(out, m)
	}
	for _, b := range byMonth(entries) {
		if !seen[b.key] {
			seen[b.key] = true
			out = append(out, b.key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start().Before(out[j].Start()) })
	return out
}
