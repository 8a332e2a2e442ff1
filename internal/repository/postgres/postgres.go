package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgExecutor is satisfied by *pgxpool.Pool, pgx.Tx, and pgxmock pools, so
// repositories run identically against the real database and tests.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is the subset of pool behaviour needed for multi-statement
// atomic operations.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// uniqueViolation is the SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// openShiftIndex is the partial unique index enforcing at most one open
// shift per worker: (worker_id) WHERE clock_out IS NULL.
const openShiftIndex = "shifts_one_open_per_worker"

// workersEmailKey is the unique constraint on workers.email.
const workersEmailKey = "workers_email_key"
