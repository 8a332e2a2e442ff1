package port

import (
	"context"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
)

// WorkerRepository exposes persistence behavior for workers.
type WorkerRepository interface {
	Create(ctx context.Context, worker domain.Worker) (*domain.Worker, error)
	GetByID(ctx context.Context, id int64) (*domain.Worker, error)
	GetByEmail(ctx context.Context, email string) (*domain.Worker, error)
	UpdatePINHash(ctx context.Context, id int64, pinHash string) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Worker, error)
}
