package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/security"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository"
)

var (
	// ErrAlreadyOnShift indicates the worker already has an open shift.
	ErrAlreadyOnShift = errors.New("worker is already on shift")
	// ErrNoOpenShift indicates a clock-out with no open shift to close.
	ErrNoOpenShift = errors.New("worker has no open shift")
	// ErrShiftNotFound indicates no shift exists with the given id.
	ErrShiftNotFound = errors.New("shift not found")
	// ErrLocationRejected indicates the clock-in came from outside the
	// approved network perimeter.
	ErrLocationRejected = errors.New("location not approved")
)

// ShiftService owns the per-worker clock state machine. A worker is on
// shift exactly when an open row (clock_out IS NULL) exists; the database's
// partial unique index is the authoritative guard, this service re-derives
// the state for friendly errors.
type ShiftService struct {
	workers port.WorkerRepository
	shifts  port.ShiftRepository
	gate    *security.LocationGate
	now     func() time.Time
}

// NewShiftService constructs a ShiftService instance.
func NewShiftService(workers port.WorkerRepository, shifts port.ShiftRepository, gate *security.LocationGate) *ShiftService {
	return &ShiftService{
		workers: workers,
		shifts:  shifts,
		gate:    gate,
		now:     time.Now,
	}
}

// ClockIn opens a shift for the worker at the current instant. The source
// address must pass the location gate, the worker must be active, and no
// shift may already be open.
func (s *ShiftService) ClockIn(ctx context.Context, workerID int64, sourceAddress string) (*domain.Shift, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("lookup worker: %w", err)
	}
	if !worker.Active {
		return nil, ErrWorkerInactive
	}

	if !s.gate.IsApproved(sourceAddress) {
		return nil, ErrLocationRejected
	}

	if _, err := s.shifts.FindOpenByWorker(ctx, workerID); err == nil {
		return nil, ErrAlreadyOnShift
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find open shift: %w", err)
	}

	shift, err := s.shifts.Insert(ctx, domain.Shift{
		WorkerID: workerID,
		ClockIn:  s.now().UTC(),
	})
	if err != nil {
		// A concurrent clock-in won the race; the index rejected ours.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyOnShift
		}
		return nil, fmt.Errorf("insert shift: %w", err)
	}

	return shift, nil
}

// ClockOut closes the worker's open shift at the current instant.
func (s *ShiftService) ClockOut(ctx context.Context, workerID int64) (*domain.Shift, error) {
	open, err := s.shifts.FindOpenByWorker(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("find open shift: %w", err)
	}

	closed, err := s.shifts.Close(ctx, open.ID, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("close shift: %w", err)
	}

	return closed, nil
}

// ManualShiftInput carries an administrator-entered shift record.
type ManualShiftInput struct {
	WorkerID int64
	ClockIn  time.Time
	ClockOut *time.Time
	Notes    *string
}

// CreateManual records a shift with explicit timestamps, bypassing the
// location gate and the on-shift check. Leaving ClockOut nil creates an
// open shift; the unique index still rejects a second open row for the
// worker at commit time. A clock-out before the clock-in is stored as
// entered; the elapsed calculation clamps such spans to zero.
func (s *ShiftService) CreateManual(ctx context.Context, input ManualShiftInput) (*domain.Shift, error) {
	if _, err := s.workers.GetByID(ctx, input.WorkerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("lookup worker: %w", err)
	}

	if input.ClockIn.IsZero() {
		return nil, fmt.Errorf("clock_in is required")
	}

	shift, err := s.shifts.Insert(ctx, domain.Shift{
		WorkerID: input.WorkerID,
		ClockIn:  input.ClockIn.UTC(),
		ClockOut: normalizeUTC(input.ClockOut),
		Manual:   true,
		Notes:    input.Notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyOnShift
		}
		return nil, fmt.Errorf("insert manual shift: %w", err)
	}

	return shift, nil
}

// Update applies a partial patch to an existing shift, open or closed.
// Absent fields are untouched; explicit nulls clear their columns.
func (s *ShiftService) Update(ctx context.Context, shiftID int64, patch domain.ShiftPatch) (*domain.Shift, error) {
	if patch.Category.Set && patch.Category.Value != nil && !domain.ValidAttendanceCategory(*patch.Category.Value) {
		return nil, fmt.Errorf("unknown attendance category %q", *patch.Category.Value)
	}
	if patch.ClockIn.Set && patch.ClockIn.Value.IsZero() {
		return nil, fmt.Errorf("clock_in must not be zero")
	}

	shift, err := s.shifts.Update(ctx, shiftID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyOnShift
		}
		return nil, fmt.Errorf("update shift: %w", err)
	}

	return shift, nil
}

// OpenShift returns the worker's open shift, or nil when the worker is idle.
func (s *ShiftService) OpenShift(ctx context.Context, workerID int64) (*domain.Shift, error) {
	shift, err := s.shifts.FindOpenByWorker(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open shift: %w", err)
	}
	return shift, nil
}

// ListForWorker returns every shift for the worker, newest first.
func (s *ShiftService) ListForWorker(ctx context.Context, workerID int64) ([]domain.Shift, error) {
	if _, err := s.workers.GetByID(ctx, workerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("lookup worker: %w", err)
	}

	shifts, err := s.shifts.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

func normalizeUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
