package core

import (
	"errors"
	"testing"
)

func TestApplyPlannedFTE(t *testing.T) {
	open := PlannedFTERecord{ID: 1, PersonName: "Alice", FTEValue: 1.0, ValidFrom: NewDate(2025, 1, 1)}

	t.Run("closes open record the day before", func(t *testing.T) {
		next := PlannedFTERecord{PersonName: "Alice", FTEValue: 0.8, ValidFrom: NewDate(2025, 3, 1)}
		closed, err := ApplyPlannedFTE([]PlannedFTERecord{open}, next)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if closed == nil || closed.ID != 1 {
			t.Fatalf("closed = %+v, want record 1", closed)
		}
		if got := closed.ValidTo.String(); got != "2025-02-28" {
			t.Errorf("closed.ValidTo = %s, want 2025-02-28", got)
		}
		if open.ValidTo != nil {
			t.Error("input record must not be mutated")
		}
	})

	t.Run("first record for person", func(t *testing.T) {
		next := PlannedFTERecord{PersonName: "Bob", FTEValue: 0.5, ValidFrom: NewDate(2025, 3, 1)}
		closed, err := ApplyPlannedFTE([]PlannedFTERecord{open}, next)
		if err != nil || closed != nil {
			t.Fatalf("ApplyPlannedFTE() = %+v, %v; want nil, nil", closed, err)
		}
	})

	t.Run("open record on same start", func(t *testing.T) {
		next := PlannedFTERecord{PersonName: "Alice", FTEValue: 0.8, ValidFrom: NewDate(2025, 1, 1)}
		if _, err := ApplyPlannedFTE([]PlannedFTERecord{open}, next); !errors.Is(err, ErrPlannedFTEOverlap) {
			t.Errorf("error = %v, want ErrPlannedFTEOverlap", err)
		}
	})

	t.Run("closed record overlaps", func(t *testing.T) {
		to := NewDate(2025, 6, 30)
		prev := PlannedFTERecord{PersonName: "Carol", FTEValue: 1, ValidFrom: NewDate(2025, 1, 1), ValidTo: &to}
		next := PlannedFTERecord{PersonName: "Carol", FTEValue: 0.5, ValidFrom: NewDate(2025, 6, 1)}
		if _, err := ApplyPlannedFTE([]PlannedFTERecord{prev}, next); !errors.Is(err, ErrPlannedFTEOverlap) {
			t.Errorf("error = %v, want ErrPlannedFTEOverlap", err)
		}
	})

	t.Run("invalid fte", func(t *testing.T) {
		for _, v := range []float64{-0.1, 2.01} {
			next := PlannedFTERecord{PersonName: "Alice", FTEValue: v, ValidFrom: NewDate(2025, 3, 1)}
			if _, err := ApplyPlannedFTE(nil, next); !errors.Is(err, ErrInvalidFTE) {
				t.Errorf("fte %v error = %v, want ErrInvalidFTE", v, err)
			}
		}
	})

	t.Run("reversed validity", func(t *testing.T) {
		to := NewDate(2025, 2, 1)
		next := PlannedFTERecord{PersonName: "Alice", FTEValue: 1, ValidFrom: NewDate(2025, 3, 1), ValidTo: &to}
		if _, err := ApplyPlannedFTE(nil, next); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("error = %v, want ErrInvalidRange", err)
		}
	})
}

func TestImportRunFinish(t *testing.T) {
	run := NewImportRun("memory", NewDate(2025, 1, 1), NewDate(2025, 1, 31))
	if run.Status != ImportPending {
		t.Fatalf("Status = %s, want pending", run.Status)
	}
	run.Finish(errors.New("boom"))
	if run.Status != ImportFailed || run.Error != "boom" || run.FinishedAt == nil {
		t.Errorf("failed run = %+v", run)
	}
	ok := NewImportRun("memory", NewDate(2025, 1, 1), NewDate(2025, 1, 31))
	ok.Finish(nil)
	if ok.Status != ImportDone || ok.Error != "" {
		t.Errorf("done run = %+v", ok)
	}
}
