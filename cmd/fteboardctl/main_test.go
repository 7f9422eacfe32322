package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fteboard/internal/core"
	"fteboard/internal/period"
	"fteboard/internal/services"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeSeed stores one 8h "Candidate interview" row per November 2025
// working day for each person.
func writeSeed(t *testing.T, people ...string) string {
	t.Helper()
	var rows []core.TimesheetEntry
	for _, p := range people {
		for d := core.NewDate(2025, 11, 1); d.Month() == 11; d = d.AddDays(1) {
			if wd := d.Weekday(); wd == 0 || wd == 6 || d.Day() == 17 {
				continue
			}
			rows = append(rows, core.TimesheetEntry{
				PersonName:   p,
				ProjectName:  "OPS",
				ActivityName: "Candidate interview",
				Date:         d,
				Hours:        8,
			})
		}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWorkdaysText(t *testing.T) {
	out, err := run(t, "workdays", "2025", "11")
	if err != nil {
		t.Fatalf("workdays: %v", err)
	}
	if !strings.HasPrefix(out, "2025-11: 19 working days, 152 hours") {
		t.Errorf("workdays output = %q", out)
	}
	if !strings.Contains(out, "2025-11-17") {
		t.Errorf("workdays output misses the 17 November holiday: %q", out)
	}
}

func TestWorkdaysRejectsBadMonth(t *testing.T) {
	if _, err := run(t, "workdays", "2025", "13"); err == nil {
		t.Error("workdays 2025 13: expected error")
	}
}

func TestHoursJSON(t *testing.T) {
	out, err := run(t, "hours", "2025-11-01", "2025-12-31", "--format", "json")
	if err != nil {
		t.Fatalf("hours: %v", err)
	}
	var rep services.WorkingHoursReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rep.Months) != 2 {
		t.Fatalf("months = %d, want 2", len(rep.Months))
	}
	if rep.Months[0].WorkingHours != 152 {
		t.Errorf("november hours = %d, want 152", rep.Months[0].WorkingHours)
	}
	if rep.WorkingHours != rep.Months[0].WorkingHours+rep.Months[1].WorkingHours {
		t.Errorf("total %d is not the sum of months", rep.WorkingHours)
	}
}

func TestHoursRejectsReversedRange(t *testing.T) {
	if _, err := run(t, "hours", "2025-12-01", "2025-11-01"); err == nil {
		t.Error("expected error for reversed range")
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := run(t, "workdays", "2025", "11", "--format", "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestReportFromSeed(t *testing.T) {
	seed := writeSeed(t, "Alice", "Bob")
	out, err := run(t, "report", "--from", "2025-11-01", "--to", "2025-11-30", "--seed", seed, "--format", "json")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var rep period.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rep.Totals.People != 2 {
		t.Errorf("people = %d, want 2", rep.Totals.People)
	}
	if rep.Totals.FTE != 2 {
		t.Errorf("fte = %v, want 2", rep.Totals.FTE)
	}
	if len(rep.Categories) != 1 || rep.Categories[0].Category != core.CategoryHiring {
		t.Errorf("categories = %+v, want only %s", rep.Categories, core.CategoryHiring)
	}
	if rep.QualityScore != 100 {
		t.Errorf("quality score = %v, want 100", rep.QualityScore)
	}
}

func TestReportText(t *testing.T) {
	seed := writeSeed(t, "Alice")
	out, err := run(t, "report", "--from", "2025-11-01", "--to", "2025-11-30", "--seed", seed)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"FTE 1.00", "Alice", string(core.CategoryHiring)} {
		if !strings.Contains(out, want) {
			t.Errorf("report output misses %q:\n%s", want, out)
		}
	}
}

func TestReportRequiresRange(t *testing.T) {
	if _, err := run(t, "report", "--from", "2025-11-01"); err == nil {
		t.Error("expected error without --to")
	}
}

func TestMonthlyFromSeed(t *testing.T) {
	seed := writeSeed(t, "Alice")
	out, err := run(t, "monthly", "2025", "11", "--seed", seed, "--format", "json")
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	var rep services.MonthlyReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rep.People) != 1 || rep.People[0].FTE != 1 {
		t.Errorf("people = %+v, want Alice at 1.0", rep.People)
	}
	if rep.People[0].PlannedFTE != nil {
		t.Errorf("planned fte = %v, want none", *rep.People[0].PlannedFTE)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want core.Category
	}{
		{"ops keyword", []string{"--project", "OPS", "--activity", "Candidate interview"}, core.CategoryHiring},
		{"keyword outside ops", []string{"--project", "Client", "--activity", "Candidate interview"}, core.CategoryUnpaired},
		{"ops fallback", []string{"--project", "OPS", "--activity", "Misc"}, core.CategoryGuiding},
		{"ops strict", []string{"--project", "OPS", "--activity", "Misc", "--strict"}, core.CategoryUnpaired},
		{"keyword in description", []string{"--project", "OPS", "--activity", "Call", "--description", "job offer"}, core.CategoryJobs},
		{"other", []string{"--project", "Client", "--activity", "Coding"}, core.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"classify"}, tt.args...)...)
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if got := core.Category(strings.TrimSpace(out)); got != tt.want {
				t.Errorf("classify %v = %s, want %s", tt.args, got, tt.want)
			}
		})
	}
}

func TestImportIntoSQLite(t *testing.T) {
	seed := writeSeed(t, "Alice")
	db := filepath.Join(t.TempDir(), "fteboard.db")

	out, err := run(t, "import", "--from", "2025-11-01", "--to", "2025-11-30", "--seed", seed, "--db", db, "--format", "json")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var imported core.ImportRun
	if err := json.Unmarshal([]byte(out), &imported); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if imported.Status != core.ImportDone || imported.Rows != 19 {
		t.Errorf("run = %+v, want done with 19 rows", imported)
	}

	// A later command reads the stored rows without any source flag.
	out, err = run(t, "monthly", "2025", "11", "--db", db, "--format", "json")
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	var rep services.MonthlyReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.People) != 1 || rep.People[0].TrackedHours != 152 {
		t.Errorf("people = %+v, want Alice with 152h", rep.People)
	}
}

func TestImportUnknownSource(t *testing.T) {
	if _, err := run(t, "import", "--from", "2025-11-01", "--to", "2025-11-30", "--source", "nope"); err == nil {
		t.Error("expected error for unknown source")
	}
}
