package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
)

func TestTotalHoursEightHourDay(t *testing.T) {
	workers := newStubWorkerRepo()
	shifts := newStubShiftRepo()
	svc := NewAttendanceService(workers, shifts)
	ctx := context.Background()

	workerID := seedWorker(t, workers)

	clockIn := time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC)
	clockOut := time.Date(2026, time.March, 6, 17, 0, 0, 0, time.UTC)
	if _, err := shifts.Insert(ctx, domain.Shift{
		WorkerID: workerID,
		ClockIn:  clockIn,
		ClockOut: &clockOut,
		Manual:   true,
	}); err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	total, err := svc.TotalHours(ctx, workerID)
	if err != nil {
		t.Fatalf("TotalHours returned error: %v", err)
	}
	if total != 8.0 {
		t.Fatalf("expected 8.0 hours, got %v", total)
	}
}

func TestTotalHoursClampsNegativeSpans(t *testing.T) {
	workers := newStubWorkerRepo()
	shifts := newStubShiftRepo()
	svc := NewAttendanceService(workers, shifts)
	ctx := context.Background()

	workerID := seedWorker(t, workers)

	// A corrupted record with clock_out before clock_in contributes zero,
	// never a negative total.
	clockIn := time.Date(2026, time.March, 6, 17, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(-3 * time.Hour)
	if _, err := shifts.Insert(ctx, domain.Shift{
		WorkerID: workerID,
		ClockIn:  clockIn,
		ClockOut: &clockOut,
	}); err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	goodIn := clockIn.Add(24 * time.Hour)
	goodOut := goodIn.Add(90 * time.Minute)
	if _, err := shifts.Insert(ctx, domain.Shift{
		WorkerID: workerID,
		ClockIn:  goodIn,
		ClockOut: &goodOut,
	}); err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	total, err := svc.TotalHours(ctx, workerID)
	if err != nil {
		t.Fatalf("TotalHours returned error: %v", err)
	}
	if math.Abs(total-1.5) > 1e-9 {
		t.Fatalf("expected 1.5 hours, got %v", total)
	}
}

func TestTotalHoursIncludesOpenShift(t *testing.T) {
	workers := newStubWorkerRepo()
	shifts := newStubShiftRepo()
	svc := NewAttendanceService(workers, shifts)
	ctx := context.Background()

	workerID := seedWorker(t, workers)

	frozen := time.Date(2026, time.March, 6, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	clockIn := frozen.Add(-2 * time.Hour)
	if _, err := shifts.Insert(ctx, domain.Shift{WorkerID: workerID, ClockIn: clockIn}); err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	total, err := svc.TotalHours(ctx, workerID)
	if err != nil {
		t.Fatalf("TotalHours returned error: %v", err)
	}
	if total != 2.0 {
		t.Fatalf("expected running 2.0 hours, got %v", total)
	}
}

func TestDailyStatus(t *testing.T) {
	workers := newStubWorkerRepo()
	shifts := newStubShiftRepo()
	svc := NewAttendanceService(workers, shifts)
	ctx := context.Background()

	workerID := seedWorker(t, workers)
	date := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)

	// No shifts at all.
	status, err := svc.DailyStatus(ctx, workerID, date)
	if err != nil {
		t.Fatalf("DailyStatus returned error: %v", err)
	}
	if status != StatusAbsent {
		t.Fatalf("expected Absent with no shifts, got %s", status)
	}

	// Open shift clocked in on the date: Present.
	open, err := shifts.Insert(ctx, domain.Shift{
		WorkerID: workerID,
		ClockIn:  time.Date(2026, time.March, 6, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	status, err = svc.DailyStatus(ctx, workerID, date)
	if err != nil {
		t.Fatalf("DailyStatus returned error: %v", err)
	}
	if status != StatusPresent {
		t.Fatalf("expected Present with open shift, got %s", status)
	}

	// The same shift closed flips the answer back to Absent: the question
	// is whether the worker is here now.
	closeAt := open.ClockIn.Add(2 * time.Hour)
	if _, err := shifts.Close(ctx, open.ID, closeAt); err != nil {
		t.Fatalf("close shift: %v", err)
	}

	status, err = svc.DailyStatus(ctx, workerID, date)
	if err != nil {
		t.Fatalf("DailyStatus returned error: %v", err)
	}
	if status != StatusAbsent {
		t.Fatalf("expected Absent after clock-out, got %s", status)
	}
}

func TestDailyStatusOpenShiftFromAnotherDay(t *testing.T) {
	workers := newStubWorkerRepo()
	shifts := newStubShiftRepo()
	svc := NewAttendanceService(workers, shifts)
	ctx := context.Background()

	workerID := seedWorker(t, workers)

	if _, err := shifts.Insert(ctx, domain.Shift{
		WorkerID: workerID,
		ClockIn:  time.Date(2026, time.March, 5, 22, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	status, err := svc.DailyStatus(ctx, workerID, time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyStatus returned error: %v", err)
	}
	if status != StatusAbsent {
		t.Fatalf("expected Absent for shift opened the previous day, got %s", status)
	}
}

func TestAttendanceUnknownWorker(t *testing.T) {
	svc := NewAttendanceService(newStubWorkerRepo(), newStubShiftRepo())
	ctx := context.Background()

	if _, err := svc.DailyStatus(ctx, 404, time.Now()); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
	if _, err := svc.TotalHours(ctx, 404); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}
