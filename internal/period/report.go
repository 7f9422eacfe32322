package period

import (
	"sort"

	"fteboard/internal/classify"
	"fteboard/internal/core"
	"fteboard/internal/fte"
)

// Input is everything a period report is computed from.
type Input struct {
	From    core.Date
	To      core.Date
	Entries []core.CategorizedEntry
	Records []core.PlannedFTERecord
	Time    fte.WorkingTime
}

// Totals are the whole-team figures of a period.
type Totals struct {
	TrackedHours     float64 `json:"trackedHours"`
	WorkingHours     int     `json:"workingHours"`
	FTE              float64 `json:"fte"`
	PlannedFTE       float64 `json:"plannedFte"`
	DeviationPercent float64 `json:"deviationPercent"`
	People           int     `json:"people"`
	Entries          int     `json:"entries"`
}

// PersonPeriodFTE is one person's row in a period report.
type PersonPeriodFTE struct {
	PersonName       string   `json:"personName"`
	TrackedHours     float64  `json:"trackedHours"`
	FTE              float64  `json:"fte"`
	PlannedFTE       *float64 `json:"plannedFte,omitempty"`
	DeviationPercent *float64 `json:"deviationPercent,omitempty"`
	ActiveMonths     int      `json:"activeMonths"`
}

// MonthTrend is one month of a period report.
type MonthTrend struct {
	Year         int                  `json:"year"`
	Month        int                  `json:"month"`
	TrackedHours float64              `json:"trackedHours"`
	WorkingHours int                  `json:"workingHours"`
	FTE          float64              `json:"fte"`
	PlannedFTE   float64              `json:"plannedFte"`
	People       int                  `json:"people"`
	Categories   []core.CategoryHours `json:"categories"`
}

// ProjectHours aggregates hours of one project.
type ProjectHours struct {
	ProjectName string  `json:"projectName"`
	Hours       float64 `json:"hours"`
	EntryCount  int     `json:"entryCount"`
	Percentage  float64 `json:"percentage"`
}

// Report is the full FTE report of a period.
type Report struct {
	From          core.Date                  `json:"dateFrom"`
	To            core.Date                  `json:"dateTo"`
	Totals        Totals                     `json:"totals"`
	People        []PersonPeriodFTE          `json:"people"`
	Trend         []MonthTrend               `json:"trend"`
	Categories    []classify.CategorySummary `json:"categories"`
	Projects      []ProjectHours             `json:"projects"`
	QualityScore  float64                    `json:"qualityScore"`
	UnpairedCount int                        `json:"unpairedCount"`
}

func plain(entries []core.CategorizedEntry) []core.TimesheetEntry {
	out := make([]core.TimesheetEntry, len(entries))
	for i, e := range entries {
		out[i] = e.TimesheetEntry
	}
	return out
}

// Build computes the full report.
func Build(in Input) Report {
	entries := plain(in.Entries)
	periodHours := in.Time.WorkingHoursForPeriod(in.From, in.To)

	r := Report{
		From:          in.From,
		To:            in.To,
		People:        people(entries, in.Records, in.From, in.To, in.Time),
		Trend:         trend(in.Entries, in.Records, in.From, in.To, in.Time),
		Categories:    classify.ActivitySummary(in.Entries),
		Projects:      ProjectBreakdown(in.Entries),
		QualityScore:  classify.QualityScore(in.Entries),
		UnpairedCount: classify.CountUnpaired(in.Entries),
	}

	total := 0.0
	for _, e := range entries {
		total += e.Hours
	}
	r.Totals = Totals{
		TrackedHours: core.Round2(total),
		WorkingHours: periodHours,
		FTE:          PeriodFTE(entries, in.From, in.To, in.Time),
		PlannedFTE:   PlannedFTEForPeriod(entries, in.Records, in.From, in.To, in.Time),
		People:       len(r.People),
		Entries:      len(entries),
	}
	r.Totals.DeviationPercent = fte.Deviation(r.Totals.FTE, r.Totals.PlannedFTE)
	return r
}

func people(entries []core.TimesheetEntry, records []core.PlannedFTERecord, from, to core.Date, wt fte.WorkingTime) []PersonPeriodFTE {
	periodHours := float64(wt.WorkingHoursForPeriod(from, to))
	planned := PersonPlannedFTE(entries, records, from, to, wt)

	hours := make(map[string]float64)
	months := make(map[string]map[core.MonthKey]bool)
	for _, e := range entries {
		hours[e.PersonName] += e.Hours
		if months[e.PersonName] == nil {
			months[e.PersonName] = make(map[core.MonthKey]bool)
		}
		months[e.PersonName][core.MonthKey{Year: e.Date.Year(), Month: e.Date.Month()}] = true
	}

	out := make([]PersonPeriodFTE, 0, len(hours))
	for person, h := range hours {
		row := PersonPeriodFTE{
			PersonName:   person,
			TrackedHours: core.Round2(h),
			FTE:          fte.CalculateFTE(h, periodHours),
			ActiveMonths: len(months[person]),
		}
		if p, ok := planned[person]; ok {
			dev := fte.Deviation(row.FTE, p)
			row.PlannedFTE = &p
			row.DeviationPercent = &dev
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonName < out[j].PersonName })
	return out
}

func trend(entries []core.CategorizedEntry, records []core.PlannedFTERecord, from, to core.Date, wt fte.WorkingTime) []MonthTrend {
	type acc struct {
		hours  float64
		people map[string]bool
		cats   map[core.Category]float64
	}
	buckets := make(map[core.MonthKey]*acc)
	for _, e := range entries {
		k := core.MonthKey{Year: e.Date.Year(), Month: e.Date.Month()}
		b := buckets[k]
		if b == nil {
			b = &acc{people: make(map[string]bool), cats: make(map[core.Category]float64)}
			buckets[k] = b
		}
		b.hours += e.Hours
		b.people[e.PersonName] = true
		b.cats[e.Category] += e.Hours
	}

	months := Months(plain(entries), from, to)
	out := make([]MonthTrend, 0, len(months))
	for _, m := range months {
		mh := wt.WorkingHoursForPeriod(m.Start(), m.End())
		row := MonthTrend{Year: m.Year, Month: m.Month, WorkingHours: mh, Categories: []core.CategoryHours{}}
		if b := buckets[m]; b != nil {
			row.TrackedHours = core.Round2(b.hours)
			row.FTE = fte.CalculateFTE(b.hours, float64(mh))
			row.People = len(b.people)

			names := make([]string, 0, len(b.people))
			for p := range b.people {
				names = append(names, p)
			}
			planned := 0.0
			for _, v := range PlannedForMonth(records, names, m) {
				planned += v
			}
			row.PlannedFTE = core.Round2(planned)

			for _, c := range core.AllCategories {
				if h, ok := b.cats[c]; ok {
					row.Categories = append(row.Categories, core.CategoryHours{Category: c, Hours: core.Round2(h)})
				}
			}
		}
		out = append(out, row)
	}
	return out
}

// ProjectBreakdown sums hours per project, ordered by hours descending.
func ProjectBreakdown(entries []core.CategorizedEntry) []ProjectHours {
	idx := make(map[string]int)
	out := []ProjectHours{}
	total := 0.0
	for _, e := range entries {
		i, ok := idx[e.ProjectName]
		if !ok {
			i = len(out)
			idx[e.ProjectName] = i
			out = append(out, ProjectHours{ProjectName: e.ProjectName})
		}
		out[i].Hours += e.Hours
		out[i].EntryCount++
		total += e.Hours
	}
	for i := range out {
		if total > 0 {
			out[i].Percentage = core.Round1(out[i].Hours / total * 100)
		}
		out[i].Hours = core.Round2(out[i].Hours)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hours > out[j].Hours })
	return out
}
