package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository"
)

// stubWorkerRepo is an in-memory port.WorkerRepository for service tests.
type stubWorkerRepo struct {
	mu      sync.Mutex
	nextID  int64
	workers map[int64]domain.Worker
}

func newStubWorkerRepo() *stubWorkerRepo {
	return &stubWorkerRepo{nextID: 1, workers: make(map[int64]domain.Worker)}
}

func (r *stubWorkerRepo) Create(_ context.Context, worker domain.Worker) (*domain.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.workers {
		if existing.Email == worker.Email {
			return nil, repository.ErrConflict
		}
	}

	worker.ID = r.nextID
	worker.CreatedAt = time.Now().UTC()
	r.nextID++
	r.workers[worker.ID] = worker
	return &worker, nil
}

func (r *stubWorkerRepo) GetByID(_ context.Context, id int64) (*domain.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	worker, ok := r.workers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &worker, nil
}

func (r *stubWorkerRepo) GetByEmail(_ context.Context, email string) (*domain.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, worker := range r.workers {
		if worker.Email == email {
			w := worker
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubWorkerRepo) UpdatePINHash(_ context.Context, id int64, pinHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	worker, ok := r.workers[id]
	if !ok {
		return repository.ErrNotFound
	}
	worker.PINHash = pinHash
	r.workers[id] = worker
	return nil
}

func (r *stubWorkerRepo) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	worker, ok := r.workers[id]
	if !ok {
		return repository.ErrNotFound
	}
	worker.Active = false
	r.workers[id] = worker
	return nil
}

func (r *stubWorkerRepo) List(_ context.Context) ([]domain.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Worker, 0, len(r.workers))
	for _, worker := range r.workers {
		out = append(out, worker)
	}
	return out, nil
}

// stubShiftRepo enforces the one-open-shift rule under its mutex, the same
// promise the partial unique index makes in PostgreSQL.
type stubShiftRepo struct {
	mu     sync.Mutex
	nextID int64
	shifts map[int64]domain.Shift
}

func newStubShiftRepo() *stubShiftRepo {
	return &stubShiftRepo{nextID: 1, shifts: make(map[int64]domain.Shift)}
}

func (r *stubShiftRepo) Insert(_ context.Context, shift domain.Shift) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if shift.ClockOut == nil {
		for _, existing := range r.shifts {
			if existing.WorkerID == shift.WorkerID && existing.ClockOut == nil {
				return nil, repository.ErrConflict
			}
		}
	}

	shift.ID = r.nextID
	shift.CreatedAt = time.Now().UTC()
	r.nextID++
	r.shifts[shift.ID] = shift
	return &shift, nil
}

func (r *stubShiftRepo) GetByID(_ context.Context, id int64) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shift, ok := r.shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &shift, nil
}

func (r *stubShiftRepo) FindOpenByWorker(_ context.Context, workerID int64) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, shift := range r.shifts {
		if shift.WorkerID == workerID && shift.ClockOut == nil {
			s := shift
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubShiftRepo) Close(_ context.Context, shiftID int64, at time.Time) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shift, ok := r.shifts[shiftID]
	if !ok || shift.ClockOut != nil {
		return nil, repository.ErrNotFound
	}
	shift.ClockOut = &at
	r.shifts[shiftID] = shift
	return &shift, nil
}

func (r *stubShiftRepo) Update(_ context.Context, shiftID int64, patch domain.ShiftPatch) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shift, ok := r.shifts[shiftID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if patch.ClockIn.Set {
		shift.ClockIn = patch.ClockIn.Value
	}
	if patch.ClockOut.Set {
		shift.ClockOut = patch.ClockOut.Value
	}
	if patch.Notes.Set {
		shift.Notes = patch.Notes.Value
	}
	if patch.Category.Set {
		shift.Category = patch.Category.Value
	}
	if patch.ElapsedHours.Set {
		shift.ElapsedHours = patch.ElapsedHours.Value
	}

	if shift.ClockOut == nil {
		for id, other := range r.shifts {
			if id != shiftID && other.WorkerID == shift.WorkerID && other.ClockOut == nil {
				return nil, repository.ErrConflict
			}
		}
	}

	r.shifts[shiftID] = shift
	return &shift, nil
}

func (r *stubShiftRepo) ListByWorker(_ context.Context, workerID int64) ([]domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Shift, 0)
	for _, shift := range r.shifts {
		if shift.WorkerID == workerID {
			out = append(out, shift)
		}
	}
	return out, nil
}

// stubCalendarRepo records the last replace call.
type stubCalendarRepo struct {
	mu    sync.Mutex
	dates []time.Time
}

func (r *stubCalendarRepo) ReplaceSelectedDates(_ context.Context, dates []time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dates = append([]time.Time(nil), dates...)
	return nil
}

func (r *stubCalendarRepo) ListSelectedDates(_ context.Context) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.dates...), nil
}
