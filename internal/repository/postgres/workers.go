package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository"
)

var workerColumns = []string{
	"id",
	"first_name",
	"last_name",
	"korean_name",
	"email",
	"pin_hash",
	"session_day",
	"active",
	"classroom",
	"created_at",
}

// WorkerRepository implements port.WorkerRepository using PostgreSQL.
type WorkerRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewWorkerRepository wires a PostgreSQL-backed worker repository.
func NewWorkerRepository(exec pgExecutor) *WorkerRepository {
	return &WorkerRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *WorkerRepository) WithTx(tx pgx.Tx) *WorkerRepository {
	if tx == nil {
		return r
	}
	return &WorkerRepository{exec: tx, builder: r.builder}
}

// Create inserts a new worker row. The id is assigned by the database and
// never reused. A duplicate email surfaces as repository.ErrConflict.
func (r *WorkerRepository) Create(ctx context.Context, worker domain.Worker) (*domain.Worker, error) {
	var koreanName any
	if worker.KoreanName != nil && *worker.KoreanName != "" {
		koreanName = *worker.KoreanName
	}

	var classroom any
	if worker.Classroom != nil && *worker.Classroom != "" {
		classroom = *worker.Classroom
	}

	stmt, args, err := r.builder.Insert("attendance.workers").
		Columns(
			"first_name",
			"last_name",
			"korean_name",
			"email",
			"pin_hash",
			"session_day",
			"active",
			"classroom",
		).
		Values(
			worker.FirstName,
			worker.LastName,
			koreanName,
			worker.Email,
			worker.PINHash,
			worker.SessionDay,
			worker.Active,
			classroom,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert worker sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&worker.ID, &worker.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == workersEmailKey {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert worker: %w", err)
	}

	return &worker, nil
}

// GetByID retrieves a worker by identifier.
func (r *WorkerRepository) GetByID(ctx context.Context, id int64) (*domain.Worker, error) {
	stmt, args, err := r.builder.
		Select(workerColumns...).
		From("attendance.workers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select worker sql: %w", err)
	}

	return r.scanWorker(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves a worker by email, the login identifier.
func (r *WorkerRepository) GetByEmail(ctx context.Context, email string) (*domain.Worker, error) {
	stmt, args, err := r.builder.
		Select(workerColumns...).
		From("attendance.workers").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select worker by email sql: %w", err)
	}

	return r.scanWorker(r.exec.QueryRow(ctx, stmt, args...))
}

// UpdatePINHash overwrites the stored credential hash unconditionally.
func (r *WorkerRepository) UpdatePINHash(ctx context.Context, id int64, pinHash string) error {
	stmt, args, err := r.builder.Update("attendance.workers").
		Set("pin_hash", pinHash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update pin hash sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update pin hash: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Deactivate marks a worker inactive (soft delete). The row is retained
// for historical shift reporting.
func (r *WorkerRepository) Deactivate(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Update("attendance.workers").
		Set("active", false).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate worker sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("deactivate worker: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns all workers ordered by last then first name.
func (r *WorkerRepository) List(ctx context.Context) ([]domain.Worker, error) {
	stmt, args, err := r.builder.
		Select(workerColumns...).
		From("attendance.workers").
		OrderBy("last_name ASC", "first_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list workers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	defer rows.Close()

	workers := make([]domain.Worker, 0)
	for rows.Next() {
		worker, err := scanWorkerRow(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, *worker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workers: %w", err)
	}

	return workers, nil
}

func (r *WorkerRepository) scanWorker(row pgx.Row) (*domain.Worker, error) {
	worker, err := scanWorkerRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return worker, nil
}

func scanWorkerRow(row pgx.Row) (*domain.Worker, error) {
	var (
		worker     domain.Worker
		koreanName sql.NullString
		classroom  sql.NullString
		sessionDay string
	)

	if err := row.Scan(
		&worker.ID,
		&worker.FirstName,
		&worker.LastName,
		&koreanName,
		&worker.Email,
		&worker.PINHash,
		&sessionDay,
		&worker.Active,
		&classroom,
		&worker.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan worker: %w", err)
	}

	worker.SessionDay = domain.SessionDay(sessionDay)
	if koreanName.Valid {
		val := koreanName.String
		worker.KoreanName = &val
	}
	if classroom.Valid {
		val := classroom.String
		worker.Classroom = &val
	}

	return &worker, nil
}

var _ port.WorkerRepository = (*WorkerRepository)(nil)
