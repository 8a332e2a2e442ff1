package port

import (
	"context"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
)

// ShiftRepository exposes persistence behavior for shift records.
//
// Insert must surface repository.ErrConflict when the single-open-shift
// index rejects a second open row for the same worker; that conflict is
// the authoritative enforcement of the invariant under concurrency.
type ShiftRepository interface {
	Insert(ctx context.Context, shift domain.Shift) (*domain.Shift, error)
	GetByID(ctx context.Context, id int64) (*domain.Shift, error)
	FindOpenByWorker(ctx context.Context, workerID int64) (*domain.Shift, error)
	Close(ctx context.Context, shiftID int64, at time.Time) (*domain.Shift, error)
	Update(ctx context.Context, shiftID int64, patch domain.ShiftPatch) (*domain.Shift, error)
	ListByWorker(ctx context.Context, workerID int64) ([]domain.Shift, error)
}
