package port

import (
	"context"
	"time"
)

// CalendarRepository persists the sparse set of selected session dates.
// ReplaceSelectedDates must be atomic: a mid-failure never leaves the set
// empty.
type CalendarRepository interface {
	ReplaceSelectedDates(ctx context.Context, dates []time.Time) error
	ListSelectedDates(ctx context.Context) ([]time.Time, error)
}
