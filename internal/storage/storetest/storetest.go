// Package storetest checks a storage.Store implementation against the
// behaviour every backend must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fteboard/internal/core"
	"fteboard/internal/storage"

	"github.com/google/uuid"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("ReplaceEntries", func(t *testing.T) { testReplaceEntries(t, newStore(t)) })
	t.Run("ListEntriesPages", func(t *testing.T) { testListEntriesPages(t, newStore(t)) })
	t.Run("Keywords", func(t *testing.T) { testKeywords(t, newStore(t)) })
	t.Run("PlannedFTE", func(t *testing.T) { testPlannedFTE(t, newStore(t)) })
	t.Run("Holidays", func(t *testing.T) { testHolidays(t, newStore(t)) })
	t.Run("ImportRuns", func(t *testing.T) { testImportRuns(t, newStore(t)) })
}

func entry(person string, d core.Date, hours float64) core.TimesheetEntry {
	return core.TimesheetEntry{
		PersonName:   person,
		PersonEmail:  "",
		ProjectName:  "OPS_2025",
		ActivityName: "Work",
		Date:         d,
		Hours:        hours,
	}
}

func testReplaceEntries(t *testing.T, s storage.Store) {
	ctx := context.Background()
	jan := []core.TimesheetEntry{entry("Alice", core.NewDate(2025, 1, 6), 8), entry("Bob", core.NewDate(2025, 1, 31), 4)}
	feb := []core.TimesheetEntry{entry("Alice", core.NewDate(2025, 2, 3), 6)}

	if _, err := s.ReplaceEntries(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31), jan, ""); err != nil {
		t.Fatalf("ReplaceEntries(jan) error: %v", err)
	}
	if _, err := s.ReplaceEntries(ctx, core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 28), feb, "run-1"); err != nil {
		t.Fatalf("ReplaceEntries(feb) error: %v", err)
	}

	withDesc := entry("Carol", core.NewDate(2025, 1, 15), 2)
	withDesc.Description = "hiring sync"
	n, err := s.ReplaceEntries(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31), []core.TimesheetEntry{withDesc}, "run-2")
	if err != nil || n != 1 {
		t.Fatalf("ReplaceEntries(jan again) = %d, %v", n, err)
	}

	got, err := s.ListEntries(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 2, 28))
	if err != nil {
		t.Fatalf("ListEntries() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListEntries() = %d rows, want 2: %+v", len(got), got)
	}
	byPerson := map[string]core.TimesheetEntry{}
	for _, e := range got {
		byPerson[e.PersonName] = e
	}
	if _, ok := byPerson["Bob"]; ok {
		t.Error("Bob's January row should have been replaced")
	}
	if c := byPerson["Carol"]; c.Description != "hiring sync" || c.Date.String() != "2025-01-15" || c.Hours != 2 {
		t.Errorf("Carol = %+v", c)
	}

	only, err := s.ListEntries(ctx, core.NewDate(2025, 2, 3), core.NewDate(2025, 2, 3))
	if err != nil || len(only) != 1 || only[0].PersonName != "Alice" {
		t.Errorf("ListEntries(single day) = %+v, %v", only, err)
	}
}

func testListEntriesPages(t *testing.T, s storage.Store) {
	ctx := context.Background()
	from, to := core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 31)
	rows := make([]core.TimesheetEntry, 0, storage.PageSize+250)
	for i := 0; i < storage.PageSize+250; i++ {
		rows = append(rows, entry(fmt.Sprintf("P%04d", i), core.NewDate(2025, 3, 1+i%31), 1))
	}
	if _, err := s.ReplaceEntries(ctx, from, to, rows, ""); err != nil {
		t.Fatalf("ReplaceEntries() error: %v", err)
	}
	got, err := s.ListEntries(ctx, from, to)
	if err != nil {
		t.Fatalf("ListEntries() error: %v", err)
	}
	if len(got) != len(rows) {
		t.Errorf("ListEntries() = %d rows, want %d", len(got), len(rows))
	}
}

func testKeywords(t *testing.T, s storage.Store) {
	ctx := context.Background()
	all, err := s.ListKeywords(ctx, false)
	if err != nil {
		t.Fatalf("ListKeywords() error: %v", err)
	}
	if len(all) != len(storage.DefaultKeywords) {
		t.Fatalf("seeded keywords = %d, want %d", len(all), len(storage.DefaultKeywords))
	}

	k, err := s.CreateKeyword(ctx, core.ActivityKeyword{Keyword: " onboarding ", Category: core.CategoryHiring, Active: true})
	if err != nil {
		t.Fatalf("CreateKeyword() error: %v", err)
	}
	if k.ID == 0 || k.Keyword != " onboarding " {
		t.Errorf("CreateKeyword() = %+v", k)
	}
	if _, err := s.CreateKeyword(ctx, core.ActivityKeyword{Keyword: "x", Category: core.CategoryOther}); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("CreateKeyword(Other) error = %v, want ErrUnknownCategory", err)
	}

	updated, err := s.SetKeywordActive(ctx, k.ID, false)
	if err != nil || updated.Active {
		t.Fatalf("SetKeywordActive() = %+v, %v", updated, err)
	}
	active, err := s.ListKeywords(ctx, true)
	if err != nil {
		t.Fatalf("ListKeywords(active) error: %v", err)
	}
	for _, a := range active {
		if a.ID == k.ID {
			t.Error("deactivated keyword listed as active")
		}
	}
	if _, err := s.SetKeywordActive(ctx, 99999, true); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("SetKeywordActive(missing) error = %v, want ErrNotFound", err)
	}
}

func testPlannedFTE(t *testing.T, s storage.Store) {
	ctx := context.Background()
	first, err := s.CreatePlannedFTE(ctx, core.PlannedFTERecord{PersonName: "Alice", FTEValue: 1.0, ValidFrom: core.NewDate(2025, 1, 1)})
	if err != nil {
		t.Fatalf("CreatePlannedFTE(first) error: %v", err)
	}
	second, err := s.CreatePlannedFTE(ctx, core.PlannedFTERecord{PersonName: "Alice", FTEValue: 0.8, ValidFrom: core.NewDate(2025, 3, 1)})
	if err != nil {
		t.Fatalf("CreatePlannedFTE(second) error: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("records share an id")
	}

	got, err := s.ListPlannedFTE(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 31))
	if err != nil {
		t.Fatalf("ListPlannedFTE() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListPlannedFTE() = %+v", got)
	}
	if got[0].ValidTo == nil || got[0].ValidTo.String() != "2025-02-28" {
		t.Errorf("first record valid_to = %v, want 2025-02-28", got[0].ValidTo)
	}
	if got[1].ValidTo != nil {
		t.Errorf("second record should stay open, got %v", got[1].ValidTo)
	}

	feb, err := s.ListPlannedFTE(ctx, core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 28))
	if err != nil || len(feb) != 1 || feb[0].FTEValue != 1.0 {
		t.Errorf("ListPlannedFTE(feb) = %+v, %v", feb, err)
	}

	if _, err := s.CreatePlannedFTE(ctx, core.PlannedFTERecord{PersonName: "Alice", FTEValue: 0.5, ValidFrom: core.NewDate(2025, 2, 1)}); !errors.Is(err, core.ErrPlannedFTEOverlap) {
		t.Errorf("CreatePlannedFTE(backdated) error = %v, want ErrPlannedFTEOverlap", err)
	}
	if _, err := s.CreatePlannedFTE(ctx, core.PlannedFTERecord{PersonName: "Bob", FTEValue: 3, ValidFrom: core.NewDate(2025, 2, 1)}); !errors.Is(err, core.ErrInvalidFTE) {
		t.Errorf("CreatePlannedFTE(fte 3) error = %v, want ErrInvalidFTE", err)
	}
}

func testHolidays(t *testing.T, s storage.Store) {
	ctx := context.Background()
	h := core.Holiday{Date: core.NewDate(2025, 12, 31), Name: "Company day", Country: "cz"}
	if err := s.UpsertHoliday(ctx, h); err != nil {
		t.Fatalf("UpsertHoliday() error: %v", err)
	}
	h.Name = "Silvestr"
	if err := s.UpsertHoliday(ctx, h); err != nil {
		t.Fatalf("UpsertHoliday(update) error: %v", err)
	}
	if err := s.UpsertHoliday(ctx, core.Holiday{Date: core.NewDate(2025, 9, 1), Name: "Ústava", Country: "SK"}); err != nil {
		t.Fatalf("UpsertHoliday(SK) error: %v", err)
	}

	got, err := s.ListHolidays(ctx, "CZ")
	if err != nil {
		t.Fatalf("ListHolidays() error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Silvestr" || got[0].Country != "CZ" {
		t.Errorf("ListHolidays(CZ) = %+v", got)
	}
}

func testImportRuns(t *testing.T, s storage.Store) {
	ctx := context.Background()
	run := core.NewImportRun("memory", core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))
	if err := s.CreateImportRun(ctx, run); err != nil {
		t.Fatalf("CreateImportRun() error: %v", err)
	}

	run.Status = core.ImportRunning
	run.Rows, run.Rejected, run.Unpaired = 10, 2, 1
	run.Finish(nil)
	if err := s.UpdateImportRun(ctx, run); err != nil {
		t.Fatalf("UpdateImportRun() error: %v", err)
	}

	got, err := s.GetImportRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetImportRun() error: %v", err)
	}
	if got.Status != core.ImportDone || got.Rows != 10 || got.Rejected != 2 || got.Unpaired != 1 {
		t.Errorf("GetImportRun() = %+v", got)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(*run.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, run.FinishedAt)
	}
	if got.CreatedAt.Sub(run.CreatedAt).Abs() > time.Millisecond {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}

	pending := core.NewImportRun("xlsx", core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 28))
	pending.CreatedAt = run.CreatedAt.Add(time.Second)
	if err := s.CreateImportRun(ctx, pending); err != nil {
		t.Fatalf("CreateImportRun(pending) error: %v", err)
	}
	all, err := s.ListImportRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListImportRuns() error: %v", err)
	}
	if len(all) != 2 || all[0].ID != pending.ID {
		t.Errorf("ListImportRuns() = %+v, want newest first", all)
	}
	open, err := s.ListImportRuns(ctx, 10, core.ImportPending, core.ImportRunning)
	if err != nil {
		t.Fatalf("ListImportRuns(pending) error: %v", err)
	}
	if len(open) != 1 || open[0].ID != pending.ID {
		t.Errorf("ListImportRuns(pending, running) = %+v, want only the pending run", open)
	}
	if limited, _ := s.ListImportRuns(ctx, 1); len(limited) != 1 {
		t.Errorf("ListImportRuns(limit 1) = %d runs, want 1", len(limited))
	}

	if _, err := s.GetImportRun(ctx, uuid.New()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetImportRun(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateImportRun(ctx, core.NewImportRun("x", run.DateFrom, run.DateTo)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateImportRun(missing) error = %v, want ErrNotFound", err)
	}
}
