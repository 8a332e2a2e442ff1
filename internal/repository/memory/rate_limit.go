package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
)

// RateLimitStore keeps sliding-window attempt history in process memory.
// It backs deployments that run without Redis (single instance, tests).
// State is lost on restart, which for throttling only means a briefly
// more permissive window.
type RateLimitStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewRateLimitStore constructs an empty in-memory store.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{attempts: make(map[string][]time.Time)}
}

// AllowAttempt trims the identifier's window, counts what remains, and
// records the attempt if the count is under the limit. The whole step runs
// under one lock, so concurrent callers serialize and exactly limit
// attempts fit in any window.
func (s *RateLimitStore) AllowAttempt(_ context.Context, identifier string, limit int, window time.Duration, at time.Time) (port.RateLimitDecision, error) {
	if limit <= 0 {
		return port.RateLimitDecision{}, errors.New("limit must be positive")
	}
	if window <= 0 {
		return port.RateLimitDecision{}, errors.New("window must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := at.Add(-window)
	kept := s.attempts[identifier][:0]
	for _, t := range s.attempts[identifier] {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= limit {
		s.attempts[identifier] = kept
		retry := kept[0].Add(window).Sub(at)
		if retry < 0 {
			retry = 0
		}
		return port.RateLimitDecision{Allowed: false, RetryAfter: retry}, nil
	}

	kept = append(kept, at)
	s.attempts[identifier] = kept
	return port.RateLimitDecision{Allowed: true, Remaining: limit - len(kept)}, nil
}

var _ port.RateLimitStore = (*RateLimitStore)(nil)
