package period

import (
	"testing"

	"fteboard/internal/calendar"
	"fteboard/internal/classify"
	"fteboard/internal/core"
)

func TestBuild(t *testing.T) {
	engine := calendar.NewEngine(calendar.Czech())
	keywords := []core.ActivityKeyword{
		{Keyword: "interview", Category: core.CategoryHiring, Active: true},
	}
	raw := []core.TimesheetEntry{
		{PersonName: "Alice", ProjectName: "OPS_2025", ActivityName: "Interview", Date: core.NewDate(2025, 2, 3), Hours: 100},
		{PersonName: "Alice", ProjectName: "OPS_2025", ActivityName: "Sync", Date: core.NewDate(2025, 3, 3), Hours: 50},
		{PersonName: "Bob", ProjectName: "Internal", ActivityName: "Interview", Date: core.NewDate(2025, 3, 4), Hours: 120},
	}
	in := Input{
		From:    core.NewDate(2025, 2, 1),
		To:      core.NewDate(2025, 3, 31),
		Entries: classify.CategorizeTimesheet(raw, keywords, false),
		Records: plannedFixture(),
		Time:    engine,
	}
	r := Build(in)

	if r.Totals.TrackedHours != 270 || r.Totals.WorkingHours != 328 {
		t.Errorf("totals = %+v", r.Totals)
	}
	if r.Totals.FTE != core.Round2(270.0/328.0) {
		t.Errorf("Totals.FTE = %v, want %v", r.Totals.FTE, core.Round2(270.0/328.0))
	}
	if r.Totals.PlannedFTE != 1.15 {
		t.Errorf("Totals.PlannedFTE = %v, want 1.15", r.Totals.PlannedFTE)
	}
	// 0.82 vs 1.15
	if r.Totals.DeviationPercent != -28.7 {
		t.Errorf("Totals.DeviationPercent = %v, want -28.7", r.Totals.DeviationPercent)
	}
	if r.Totals.People != 2 || r.Totals.Entries != 3 {
		t.Errorf("totals counts = %+v", r.Totals)
	}

	if len(r.People) != 2 || r.People[0].PersonName != "Alice" {
		t.Fatalf("people = %+v", r.People)
	}
	alice := r.People[0]
	if alice.FTE != 0.46 || alice.ActiveMonths != 2 || alice.PlannedFTE == nil || *alice.PlannedFTE != 0.74 {
		t.Errorf("alice = %+v", alice)
	}

	if len(r.Trend) != 2 {
		t.Fatalf("trend = %+v", r.Trend)
	}
	feb, mar := r.Trend[0], r.Trend[1]
	if feb.WorkingHours != 160 || feb.FTE != 0.63 || feb.PlannedFTE != 1.0 || feb.People != 1 {
		t.Errorf("feb = %+v", feb)
	}
	if mar.WorkingHours != 168 || mar.TrackedHours != 170 || mar.PlannedFTE != 1.3 || mar.People != 2 {
		t.Errorf("mar = %+v", mar)
	}
	if len(mar.Categories) != 2 || mar.Categories[0].Category != core.CategoryGuiding || mar.Categories[1].Category != core.CategoryUnpaired {
		t.Errorf("mar categories = %+v", mar.Categories)
	}

	if r.UnpairedCount != 1 || r.QualityScore != 66.7 {
		t.Errorf("quality = %v, unpaired = %d", r.QualityScore, r.UnpairedCount)
	}
	if len(r.Projects) != 2 || r.Projects[0].ProjectName != "OPS_2025" || r.Projects[0].Hours != 150 {
		t.Errorf("projects = %+v", r.Projects)
	}
}

func TestBuildEmpty(t *testing.T) {
	engine := calendar.NewEngine(calendar.Czech())
	r := Build(Input{From: core.NewDate(2025, 11, 1), To: core.NewDate(2025, 11, 30), Time: engine})
	if r.Totals.FTE != 0 || r.Totals.PlannedFTE != 0 || r.Totals.DeviationPercent != 0 {
		t.Errorf("totals = %+v", r.Totals)
	}
	if r.QualityScore != 100 {
		t.Errorf("QualityScore = %v, want 100", r.QualityScore)
	}
	if len(r.Trend) != 1 || r.Trend[0].WorkingHours != 152 {
		t.Errorf("trend = %+v", r.Trend)
	}
}

func TestScenarioFullMonth(t *testing.T) {
	engine := calendar.NewEngine(calendar.Czech())
	raw := []core.TimesheetEntry{{PersonName: "Alice", ProjectName: "OPS_2025", ActivityName: "Work", Date: core.NewDate(2025, 11, 10), Hours: 152}}
	r := Build(Input{
		From:    core.NewDate(2025, 11, 1),
		To:      core.NewDate(2025, 11, 30),
		Entries: classify.CategorizeTimesheet(raw, nil, false),
		Time:    engine,
	})
	if r.Totals.FTE != 1.00 {
		t.Errorf("FTE = %v, want 1.00", r.Totals.FTE)
	}
	if r.Categories[0].Category != core.CategoryGuiding {
		t.Errorf("category = %v, want OPS_Guiding", r.Categories[0].Category)
	}
}
