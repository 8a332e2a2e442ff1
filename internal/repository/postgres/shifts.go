package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository"
)

var shiftColumns = []string{
	"id",
	"worker_id",
	"clock_in",
	"clock_out",
	"manual",
	"notes",
	"category",
	"elapsed_hours",
	"created_at",
}

// ShiftRepository implements port.ShiftRepository using PostgreSQL.
//
// The single-open-shift invariant is owned by the partial unique index
// shifts_one_open_per_worker on (worker_id) WHERE clock_out IS NULL; this
// repository translates its violation into repository.ErrConflict so two
// racing inserts can never both commit an open row.
type ShiftRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewShiftRepository wires a PostgreSQL-backed shift repository.
func NewShiftRepository(exec pgExecutor) *ShiftRepository {
	return &ShiftRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ShiftRepository) WithTx(tx pgx.Tx) *ShiftRepository {
	if tx == nil {
		return r
	}
	return &ShiftRepository{exec: tx, builder: r.builder}
}

// Insert writes a new shift row. A second open row for the same worker is
// rejected by the partial unique index and surfaces as ErrConflict.
func (r *ShiftRepository) Insert(ctx context.Context, shift domain.Shift) (*domain.Shift, error) {
	var notes any
	if shift.Notes != nil && *shift.Notes != "" {
		notes = *shift.Notes
	}

	var category any
	if shift.Category != nil {
		category = *shift.Category
	}

	stmt, args, err := r.builder.Insert("attendance.shifts").
		Columns("worker_id", "clock_in", "clock_out", "manual", "notes", "category", "elapsed_hours").
		Values(shift.WorkerID, shift.ClockIn, shift.ClockOut, shift.Manual, notes, category, shift.ElapsedHours).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert shift sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&shift.ID, &shift.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == openShiftIndex {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert shift: %w", err)
	}

	return &shift, nil
}

// GetByID retrieves a shift by identifier.
func (r *ShiftRepository) GetByID(ctx context.Context, id int64) (*domain.Shift, error) {
	stmt, args, err := r.builder.
		Select(shiftColumns...).
		From("attendance.shifts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select shift sql: %w", err)
	}

	return r.scanShift(r.exec.QueryRow(ctx, stmt, args...))
}

// FindOpenByWorker returns the worker's open shift, or ErrNotFound when
// the worker is idle. At most one such row can exist.
func (r *ShiftRepository) FindOpenByWorker(ctx context.Context, workerID int64) (*domain.Shift, error) {
	stmt, args, err := r.builder.
		Select(shiftColumns...).
		From("attendance.shifts").
		Where(squirrel.Eq{"worker_id": workerID}).
		Where("clock_out IS NULL").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select open shift sql: %w", err)
	}

	return r.scanShift(r.exec.QueryRow(ctx, stmt, args...))
}

// Close stamps clock_out on an open shift and returns the closed record.
func (r *ShiftRepository) Close(ctx context.Context, shiftID int64, at time.Time) (*domain.Shift, error) {
	stmt, args, err := r.builder.Update("attendance.shifts").
		Set("clock_out", at).
		Where(squirrel.Eq{"id": shiftID}).
		Where("clock_out IS NULL").
		Suffix("RETURNING " + columnList(shiftColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build close shift sql: %w", err)
	}

	return r.scanShift(r.exec.QueryRow(ctx, stmt, args...))
}

// Update applies a partial patch to an existing shift, open or closed. It
// deliberately does not consult the open-shift invariant; the partial
// unique index still backstops a patch that would reopen a second row.
func (r *ShiftRepository) Update(ctx context.Context, shiftID int64, patch domain.ShiftPatch) (*domain.Shift, error) {
	if patch.Empty() {
		return r.GetByID(ctx, shiftID)
	}

	update := r.builder.Update("attendance.shifts")

	if patch.ClockIn.Set {
		update = update.Set("clock_in", patch.ClockIn.Value)
	}
	if patch.ClockOut.Set {
		update = update.Set("clock_out", patch.ClockOut.Value)
	}
	if patch.Notes.Set {
		update = update.Set("notes", patch.Notes.Value)
	}
	if patch.Category.Set {
		update = update.Set("category", patch.Category.Value)
	}
	if patch.ElapsedHours.Set {
		update = update.Set("elapsed_hours", patch.ElapsedHours.Value)
	}

	stmt, args, err := update.
		Where(squirrel.Eq{"id": shiftID}).
		Suffix("RETURNING " + columnList(shiftColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update shift sql: %w", err)
	}

	shift, err := r.scanShift(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == openShiftIndex {
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	return shift, nil
}

// ListByWorker returns all of a worker's shifts, newest clock-in first.
func (r *ShiftRepository) ListByWorker(ctx context.Context, workerID int64) ([]domain.Shift, error) {
	stmt, args, err := r.builder.
		Select(shiftColumns...).
		From("attendance.shifts").
		Where(squirrel.Eq{"worker_id": workerID}).
		OrderBy("clock_in DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list shifts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShiftRow(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}

	return shifts, nil
}

func (r *ShiftRepository) scanShift(row pgx.Row) (*domain.Shift, error) {
	shift, err := scanShiftRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return shift, nil
}

func scanShiftRow(row pgx.Row) (*domain.Shift, error) {
	var (
		shift    domain.Shift
		clockOut sql.NullTime
		notes    sql.NullString
		category sql.NullString
		elapsed  sql.NullFloat64
	)

	if err := row.Scan(
		&shift.ID,
		&shift.WorkerID,
		&shift.ClockIn,
		&clockOut,
		&shift.Manual,
		&notes,
		&category,
		&elapsed,
		&shift.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan shift: %w", err)
	}

	if clockOut.Valid {
		val := clockOut.Time
		shift.ClockOut = &val
	}
	if notes.Valid {
		val := notes.String
		shift.Notes = &val
	}
	if category.Valid {
		val := domain.AttendanceCategory(category.String)
		shift.Category = &val
	}
	if elapsed.Valid {
		val := elapsed.Float64
		shift.ElapsedHours = &val
	}

	return &shift, nil
}

func columnList(cols []string) string {
	out := cols[0]
	for _, col := range cols[1:] {
		out += ", " + col
	}
	return out
}

var _ port.ShiftRepository = (*ShiftRepository)(nil)
