package usecase

import (
	"context"
	"testing"
	"time"
)

func TestReplaceSelectedDatesNormalizes(t *testing.T) {
	repo := &stubCalendarRepo{}
	svc := NewCalendarService(repo)
	ctx := context.Background()

	err := svc.ReplaceSelectedDates(ctx, []time.Time{
		time.Date(2026, time.March, 13, 18, 30, 0, 0, time.UTC),
		time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 6, 14, 0, 0, 0, time.UTC), // duplicate day
	})
	if err != nil {
		t.Fatalf("ReplaceSelectedDates returned error: %v", err)
	}

	dates, err := svc.ListSelectedDates(ctx)
	if err != nil {
		t.Fatalf("ListSelectedDates returned error: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("expected two distinct dates, got %d", len(dates))
	}
	if !dates[0].Equal(time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected truncated ascending first date, got %v", dates[0])
	}
	if !dates[1].Equal(time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected second date March 13, got %v", dates[1])
	}
}

func TestReplaceSelectedDatesEmptySetAllowed(t *testing.T) {
	repo := &stubCalendarRepo{}
	svc := NewCalendarService(repo)
	ctx := context.Background()

	if err := svc.ReplaceSelectedDates(ctx, []time.Time{time.Now()}); err != nil {
		t.Fatalf("ReplaceSelectedDates returned error: %v", err)
	}
	if err := svc.ReplaceSelectedDates(ctx, nil); err != nil {
		t.Fatalf("ReplaceSelectedDates returned error: %v", err)
	}

	dates, err := svc.ListSelectedDates(ctx)
	if err != nil {
		t.Fatalf("ListSelectedDates returned error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected cleared date set, got %d entries", len(dates))
	}
}
