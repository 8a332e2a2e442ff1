package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
)

// CalendarRepository stores the sparse set of selected session dates.
type CalendarRepository struct {
	pool    txBeginner
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCalendarRepository wires a PostgreSQL-backed calendar repository.
// pool is used to open transactions for the replace operation; exec serves
// plain reads.
func NewCalendarRepository(pool txBeginner, exec pgExecutor) *CalendarRepository {
	return &CalendarRepository{
		pool:    pool,
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ReplaceSelectedDates swaps the whole selected-date set in one transaction.
// Either every submitted date lands or the previous set survives untouched.
func (r *CalendarRepository) ReplaceSelectedDates(ctx context.Context, dates []time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace calendar tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM attendance.calendar_dates"); err != nil {
		return fmt.Errorf("clear calendar dates: %w", err)
	}

	if len(dates) > 0 {
		insert := r.builder.Insert("attendance.calendar_dates").Columns("session_date")
		for _, d := range dates {
			insert = insert.Values(d)
		}
		// Duplicate submissions collapse onto the primary key.
		stmt, args, err := insert.Suffix("ON CONFLICT (session_date) DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("build insert calendar dates sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert calendar dates: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace calendar tx: %w", err)
	}

	return nil
}

// ListSelectedDates returns every selected date in ascending order.
func (r *CalendarRepository) ListSelectedDates(ctx context.Context) ([]time.Time, error) {
	stmt, args, err := r.builder.
		Select("session_date").
		From("attendance.calendar_dates").
		OrderBy("session_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list calendar dates sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query calendar dates: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan calendar date: %w", err)
		}
		dates = append(dates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar dates: %w", err)
	}

	return dates, nil
}

var _ port.CalendarRepository = (*CalendarRepository)(nil)
