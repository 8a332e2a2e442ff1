package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
)

func TestUpdateShiftRequestPatchTriState(t *testing.T) {
	var req UpdateShiftRequest
	payload := `{"clock_out": null, "notes": "left for clinic", "elapsed_hours": 3.5}`
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}

	patch, err := req.toPatch()
	if err != nil {
		t.Fatalf("toPatch returned error: %v", err)
	}

	if patch.ClockIn.Set {
		t.Fatalf("expected absent clock_in to stay unset")
	}
	if !patch.ClockOut.Set || patch.ClockOut.Value != nil {
		t.Fatalf("expected explicit null clock_out to clear, got %+v", patch.ClockOut)
	}
	if !patch.Notes.Set || patch.Notes.Value == nil || *patch.Notes.Value != "left for clinic" {
		t.Fatalf("expected notes value, got %+v", patch.Notes)
	}
	if patch.Category.Set {
		t.Fatalf("expected absent category to stay unset")
	}
	if !patch.ElapsedHours.Set || patch.ElapsedHours.Value == nil || *patch.ElapsedHours.Value != 3.5 {
		t.Fatalf("expected elapsed override 3.5, got %+v", patch.ElapsedHours)
	}
}

func TestUpdateShiftRequestPatchValues(t *testing.T) {
	var req UpdateShiftRequest
	payload := `{"clock_in": "2026-03-06T09:00:00Z", "clock_out": "2026-03-06T17:00:00Z", "category": "on_time"}`
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}

	patch, err := req.toPatch()
	if err != nil {
		t.Fatalf("toPatch returned error: %v", err)
	}

	if !patch.ClockIn.Set || !patch.ClockIn.Value.Equal(time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected clock_in set, got %+v", patch.ClockIn)
	}
	if !patch.ClockOut.Set || patch.ClockOut.Value == nil {
		t.Fatalf("expected clock_out value, got %+v", patch.ClockOut)
	}
	if !patch.Category.Set || patch.Category.Value == nil || *patch.Category.Value != domain.CategoryOnTime {
		t.Fatalf("expected category on_time, got %+v", patch.Category)
	}
}

func TestUpdateShiftRequestPatchRejectsMalformed(t *testing.T) {
	var req UpdateShiftRequest
	if err := json.Unmarshal([]byte(`{"elapsed_hours": "lots"}`), &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}

	if _, err := req.toPatch(); err == nil {
		t.Fatalf("expected error for non-numeric elapsed_hours")
	}
}

func TestBoundaryValidators(t *testing.T) {
	if !validEmail("sophia.kim@example.org") {
		t.Fatalf("expected valid email accepted")
	}
	for _, bad := range []string{"", "plain", "a@b", "two@@example.org", "ta example@example.org"} {
		if validEmail(bad) {
			t.Fatalf("expected email %q rejected", bad)
		}
	}

	if !validPIN("123456") {
		t.Fatalf("expected 6-digit pin accepted")
	}
	for _, bad := range []string{"", "12345", "1234567", "12345a"} {
		if validPIN(bad) {
			t.Fatalf("expected pin %q rejected", bad)
		}
	}

	if day, ok := parseSessionDay("Saturday"); !ok || day != domain.SessionDaySaturday {
		t.Fatalf("expected Saturday to parse, got %q %v", day, ok)
	}
	if _, ok := parseSessionDay("monday"); ok {
		t.Fatalf("expected monday rejected")
	}
}
