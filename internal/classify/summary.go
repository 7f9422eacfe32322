package classify

import (
	"sort"

	"fteboard/internal/core"
)

// CategorySummary aggregates hours and row counts of one category.
type CategorySummary struct {
	Category   core.Category `json:"category"`
	TotalHours float64       `json:"totalHours"`
	EntryCount int           `json:"entryCount"`
	Percentage float64       `json:"percentage"`
}

// ActivitySummary groups entries by category, ordered by hours descending.
// Percentages are shares of total hours rounded to one decimal.
func ActivitySummary(entries []core.CategorizedEntry) []CategorySummary {
	idx := make(map[core.Category]int)
	out := []CategorySummary{}
	total := 0.0
	for _, e := range entries {
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, CategorySummary{Category: e.Category})
		}
		out[i].TotalHours += e.Hours
		out[i].EntryCount++
		total += e.Hours
	}
	for i := range out {
		if total > 0 {
			out[i].Percentage = core.Round1(out[i].TotalHours / total * 100)
		}
		out[i].TotalHours = core.Round2(out[i].TotalHours)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalHours > out[j].TotalHours })
	return out
}

// QualityScore is the percentage of entries that are not Unpaired. An empty
// timesheet scores 100.
func QualityScore(entries []core.CategorizedEntry) float64 {
	if len(entries) == 0 {
		return 100
	}
	paired := 0
	for _, e := range entries {
		if e.Category.IsPaired() {
			paired++
		}
	}
	return core.Round1(float64(paired) / float64(len(entries)) * 100)
}

// UnpairedEntries returns the entries needing remediation, in input order.
func UnpairedEntries(entries []core.CategorizedEntry) []core.CategorizedEntry {
	out := []core.CategorizedEntry{}
	for _, e := range entries {
		if !e.Category.IsPaired() {
			out = append(out, e)
		}
	}
	return out
}

// CountUnpaired returns the number of Unpaired entries.
func CountUnpaired(entries []core.CategorizedEntry) int {
	n := 0
	for _, e := range entries {
		if !e.Category.IsPaired() {
			n++
		}
	}
	return n
}
