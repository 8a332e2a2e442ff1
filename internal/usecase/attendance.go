package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository"
)

// DailyStatus is the point-in-time presence answer for one worker and date.
type DailyStatus string

const (
	StatusPresent DailyStatus = "Present"
	StatusAbsent  DailyStatus = "Absent"
)

// AttendanceService derives reporting views from the shift ledger. It never
// writes; every answer is recomputed from stored rows on each call.
type AttendanceService struct {
	workers port.WorkerRepository
	shifts  port.ShiftRepository
	now     func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(workers port.WorkerRepository, shifts port.ShiftRepository) *AttendanceService {
	return &AttendanceService{workers: workers, shifts: shifts, now: time.Now}
}

// DailyStatus reports Present when the worker currently has an open shift
// whose clock-in falls on the given date, in the date's location. A shift
// already closed that day reports Absent: the answer is "is the worker here
// now", not "was the worker here today".
func (s *AttendanceService) DailyStatus(ctx context.Context, workerID int64, date time.Time) (DailyStatus, error) {
	if _, err := s.workers.GetByID(ctx, workerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrWorkerNotFound
		}
		return "", fmt.Errorf("lookup worker: %w", err)
	}

	open, err := s.shifts.FindOpenByWorker(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return StatusAbsent, nil
		}
		return "", fmt.Errorf("find open shift: %w", err)
	}

	if sameDate(open.ClockIn, date) {
		return StatusPresent, nil
	}
	return StatusAbsent, nil
}

// TotalHours sums elapsed fractional hours across all of the worker's
// shifts. Open shifts contribute their running duration; spans that are
// not positive contribute zero.
func (s *AttendanceService) TotalHours(ctx context.Context, workerID int64) (float64, error) {
	if _, err := s.workers.GetByID(ctx, workerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrWorkerNotFound
		}
		return 0, fmt.Errorf("lookup worker: %w", err)
	}

	shifts, err := s.shifts.ListByWorker(ctx, workerID)
	if err != nil {
		return 0, fmt.Errorf("list shifts: %w", err)
	}

	now := s.now().UTC()
	total := 0.0
	for _, shift := range shifts {
		total += shift.Elapsed(now)
	}
	return total, nil
}

// sameDate compares calendar dates in the query date's location.
func sameDate(instant, date time.Time) bool {
	y1, m1, d1 := instant.In(date.Location()).Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
