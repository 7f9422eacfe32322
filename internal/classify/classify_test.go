package classify

import (
	"reflect"
	"testing"

	"fteboard/internal/core"
)

func testKeywords() []core.ActivityKeyword {
	return []core.ActivityKeyword{
		{ID: 1, Keyword: "Interview", Category: core.CategoryHiring, Active: true},
		{ID: 2, Keyword: "job", Category: core.CategoryJobs, Active: true},
		{ID: 3, Keyword: "review", Category: core.CategoryReviews, Active: true},
		{ID: 4, Keyword: "mentoring", Category: core.CategoryGuiding, Active: true},
		{ID: 5, Keyword: "onboarding", Category: core.CategoryHiring, Active: false},
	}
}

func TestCategorizeActivity(t *testing.T) {
	kw := testKeywords()
	tests := []struct {
		name                 string
		activity, desc, proj string
		strict               bool
		want                 core.Category
	}{
		{"hiring beats jobs", "Interview for job opening", "", "OPS_2025", false, core.CategoryHiring},
		{"jobs keyword", "Job posting", "", "Design tým OPS_2025", false, core.CategoryJobs},
		{"reviews in description", "Work", "code REVIEW", "ops", false, core.CategoryReviews},
		{"substring inside word", "Jobless data cleanup", "", "OPS", false, core.CategoryJobs},
		{"restricted on non ops", "Interview", "", "Internal", false, core.CategoryUnpaired},
		{"restricted on non ops ignores guiding project", "review", "mentoring", "Guiding_2025", false, core.CategoryUnpaired},
		{"guiding keyword on guiding project", "Mentoring juniors", "", "Guiding_2025", false, core.CategoryGuiding},
		{"guiding keyword on ops project", "Mentoring", "", "OPS_2025", false, core.CategoryUnpaired},
		{"guiding keyword elsewhere falls through", "Mentoring", "", "Internal", false, core.CategoryOther},
		{"guiding project fallback", "Design sync", "", "Design tým Guiding_2025", false, core.CategoryGuiding},
		{"ops fallback strict", "Design sync", "", "Design tým OPS_2025", true, core.CategoryUnpaired},
		{"ops fallback lenient", "Design sync", "", "Design tým OPS_2025", false, core.CategoryGuiding},
		{"other project", "Coding", "", "Website", true, core.CategoryOther},
		{"inactive keyword ignored", "Onboarding", "", "Internal", false, core.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeActivity(tt.activity, tt.desc, tt.proj, kw, tt.strict)
			if got != tt.want {
				t.Errorf("CategorizeActivity(%q, %q, %q) = %v, want %v", tt.activity, tt.desc, tt.proj, got, tt.want)
			}
		})
	}
}

func TestCategorizeActivityNoKeywords(t *testing.T) {
	if got := CategorizeActivity("Anything", "", "OPS_2025", nil, false); got != core.CategoryGuiding {
		t.Errorf("lenient OPS without keywords = %v, want OPS_Guiding", got)
	}
	if got := CategorizeActivity("Anything", "", "OPS_2025", nil, true); got != core.CategoryUnpaired {
		t.Errorf("strict OPS without keywords = %v, want Unpaired", got)
	}
}

func TestCategorizeTimesheetIdempotent(t *testing.T) {
	entries := []core.TimesheetEntry{
		{PersonName: "Alice", ProjectName: "OPS_2025", ActivityName: "Interview", Date: core.NewDate(2025, 11, 3), Hours: 2},
		{PersonName: "Bob", ProjectName: "Internal", ActivityName: "Review", Date: core.NewDate(2025, 11, 4), Hours: 3},
		{PersonName: "Bob", ProjectName: "Web", ActivityName: "Coding", Date: core.NewDate(2025, 11, 4), Hours: 5},
	}
	kw := testKeywords()
	first := CategorizeTimesheet(entries, kw, false)
	second := CategorizeTimesheet(entries, kw, false)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("CategorizeTimesheet not idempotent:\n%+v\n%+v", first, second)
	}
	want := []core.Category{core.CategoryHiring, core.CategoryUnpaired, core.CategoryOther}
	for i, e := range first {
		if e.Category != want[i] {
			t.Errorf("entry %d category = %v, want %v", i, e.Category, want[i])
		}
		if e.TimesheetEntry != entries[i] {
			t.Errorf("entry %d not preserved", i)
		}
	}
}

func TestScenarioSingleOpsEntry(t *testing.T) {
	entries := []core.TimesheetEntry{{PersonName: "Alice", Hours: 152, Date: core.NewDate(2025, 11, 10), ProjectName: "OPS_2025", ActivityName: "Work"}}
	got := CategorizeTimesheet(entries, nil, false)
	if got[0].Category != core.CategoryGuiding {
		t.Errorf("category = %v, want OPS_Guiding", got[0].Category)
	}
}

func TestActiveKeywords(t *testing.T) {
	got := ActiveKeywords(testKeywords())
	if len(got) != 4 {
		t.Fatalf("len(ActiveKeywords) = %d, want 4", len(got))
	}
	for _, k := range got {
		if !k.Active {
			t.Errorf("inactive keyword %q returned", k.Keyword)
		}
	}
}

func TestCategorizeActivityKeepsKeywordSpaces(t *testing.T) {
	kw := []core.ActivityKeyword{{Keyword: " job", Category: core.CategoryJobs, Active: true}}
	tests := []struct {
		activity string
		want     core.Category
	}{
		{"Posting a new job", core.CategoryJobs},
		{"Jobless data cleanup", core.CategoryGuiding},
		{"Reviewing backlog", core.CategoryGuiding},
	}
	for _, tt := range tests {
		if got := CategorizeActivity(tt.activity, "", "OPS_2025", kw, false); got != tt.want {
			t.Errorf("CategorizeActivity(%q) = %v, want %v", tt.activity, got, tt.want)
		}
	}
	blank := []core.ActivityKeyword{{Keyword: "   ", Category: core.CategoryJobs, Active: true}}
	if got := CategorizeActivity("a b", "", "OPS_2025", blank, true); got != core.CategoryUnpaired {
		t.Errorf("blank keyword matched: %v", got)
	}
}
