package port

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one admission attempt.
type RateLimitDecision struct {
	// Allowed reports whether the attempt was admitted and recorded.
	Allowed bool
	// Remaining is how many further attempts fit in the window. Zero when
	// the attempt was rejected.
	Remaining int
	// RetryAfter is how long until the oldest counted attempt leaves the
	// window. Only meaningful when Allowed is false.
	RetryAfter time.Duration
}

// RateLimitStore enforces sliding-window attempt limits over shared
// counters. AllowAttempt trims, counts, and records in a single atomic
// step; implementations must not expose a separate read followed by a
// separate write, or concurrent callers all observe the pre-write count
// and the ceiling over-admits.
type RateLimitStore interface {
	AllowAttempt(ctx context.Context, identifier string, limit int, window time.Duration, at time.Time) (RateLimitDecision, error)
}
