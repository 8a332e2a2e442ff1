package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
)

// CalendarService manages the sparse set of selected session dates shown as
// columns on the attendance table.
type CalendarService struct {
	calendar port.CalendarRepository
}

// NewCalendarService constructs a CalendarService instance.
func NewCalendarService(calendar port.CalendarRepository) *CalendarService {
	return &CalendarService{calendar: calendar}
}

// ReplaceSelectedDates swaps the whole selected-date set atomically.
// Submitted timestamps are truncated to their calendar date and
// de-duplicated before storage.
func (s *CalendarService) ReplaceSelectedDates(ctx context.Context, dates []time.Time) error {
	seen := make(map[time.Time]struct{}, len(dates))
	normalized := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		normalized = append(normalized, day)
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i].Before(normalized[j]) })

	if err := s.calendar.ReplaceSelectedDates(ctx, normalized); err != nil {
		return fmt.Errorf("replace selected dates: %w", err)
	}
	return nil
}

// ListSelectedDates returns the selected dates in ascending order.
func (s *CalendarService) ListSelectedDates(ctx context.Context) ([]time.Time, error) {
	dates, err := s.calendar.ListSelectedDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list selected dates: %w", err)
	}
	return dates, nil
}
