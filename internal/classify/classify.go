// Package classify assigns business activity categories to timesheet rows.
//
// Matching is a case-insensitive substring search of the activity name and
// description against the active keyword snapshot. Restricted OPS categories
// are only valid on projects whose name contains "ops"; a keyword hit on any
// other project marks the row Unpaired.
package classify

import (
	"strings"

	"fteboard/internal/core"
)

// KeywordSet is a pre-lowercased index of active keywords by category.
type KeywordSet struct {
	byCategory map[core.Category][]string
}

// NewKeywordSet indexes the active keywords. Inactive or blank keywords are
// dropped; the others are matched as given, surrounding spaces included.
func NewKeywordSet(keywords []core.ActivityKeyword) KeywordSet {
	ks := KeywordSet{byCategory: make(map[core.Category][]string)}
	for _, k := range keywords {
		if !k.Active || strings.TrimSpace(k.Keyword) == "" {
			continue
		}
		kw := strings.ToLower(k.Keyword)
		ks.byCategory[k.Category] = append(ks.byCategory[k.Category], kw)
	}
	return ks
}

func (ks KeywordSet) matches(c core.Category, text string) bool {
	for _, kw := range ks.byCategory[c] {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Categorize classifies one row against the index.
func (ks KeywordSet) Categorize(activityName, description, projectName string, strict bool) core.Category {
	text := strings.ToLower(activityName + " " + description)
	project := strings.ToLower(projectName)
	isOps := strings.Contains(project, "ops")
	isGuiding := strings.Contains(project, "guiding")

	for _, c := range core.RestrictedCategories {
		if ks.matches(c, text) {
			if isOps {
				return c
			}
			return core.CategoryUnpaired
		}
	}

	if ks.matches(core.CategoryGuiding, text) {
		if isGuiding {
			return core.CategoryGuiding
		}
		if isOps {
			return core.CategoryUnpaired
		}
	}

	switch {
	case isGuiding:
		return core.CategoryGuiding
	case isOps && strict:
		return core.CategoryUnpaired
	case isOps:
		return core.CategoryGuiding
	}
	return core.CategoryOther
}

// CategorizeActivity classifies a single row. Only active keywords take part.
// In strict mode an OPS row without any keyword hit is Unpaired; otherwise it
// falls back to OPS_Guiding.
func CategorizeActivity(activityName, description, projectName string, keywords []core.ActivityKeyword, strict bool) core.Category {
	return NewKeywordSet(keywords).Categorize(activityName, description, projectName, strict)
}

// CategorizeTimesheet classifies every entry independently, preserving order.
func CategorizeTimesheet(entries []core.TimesheetEntry, keywords []core.ActivityKeyword, strict bool) []core.CategorizedEntry {
	ks := NewKeywordSet(keywords)
	out := make([]core.CategorizedEntry, len(entries))
	for i, e := range entries {
		out[i] = core.CategorizedEntry{
			TimesheetEntry: e,
			Category:       ks.Categorize(e.ActivityName, e.Description, e.ProjectName, strict),
		}
	}
	return out
}

// ActiveKeywords returns the active subset of keywords.
func ActiveKeywords(keywords []core.ActivityKeyword) []core.ActivityKeyword {
	out := make([]core.ActivityKeyword, 0, len(keywords))
	for _, k := range keywords {
		if k.Active {
			out = append(out, k)
		}
	}
	return out
}
