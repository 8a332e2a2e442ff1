package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all PostgreSQL-backed repositories sharing one pool.
type Repositories struct {
	Workers  *WorkerRepository
	Shifts   *ShiftRepository
	Calendar *CalendarRepository
}

// NewRepositories constructs the repository set over a connection pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Workers:  NewWorkerRepository(pool),
		Shifts:   NewShiftRepository(pool),
		Calendar: NewCalendarRepository(pool, pool),
	}
}
