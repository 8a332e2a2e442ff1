package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
)

// SlidingWindowConfig defines configuration for the sliding window limiter.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// allowAttemptScript trims, counts, and conditionally records in one
// server-side step. Two clients racing on the same key each see the other's
// write or not at all; they can never both admit the last slot.
var allowAttemptScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, 0, oldest[2]}
end
redis.call('ZADD', key, now, member)
if ttl > 0 then
	redis.call('PEXPIRE', key, ttl)
end
return {1, limit - count - 1, '0'}
`)

// RateLimitRepository persists rate-limit attempts in Redis sorted sets,
// keyed per identifier (rule name plus client address). Scores are attempt
// timestamps in milliseconds; members are random so simultaneous attempts
// never collapse into one entry.
type RateLimitRepository struct {
	client *redis.Client
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client *redis.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// AllowAttempt runs the check-and-record script against the identifier's key.
func (r *RateLimitRepository) AllowAttempt(ctx context.Context, identifier string, limit int, window time.Duration, at time.Time) (port.RateLimitDecision, error) {
	if limit <= 0 {
		return port.RateLimitDecision{}, errors.New("limit must be positive")
	}
	if window <= 0 {
		return port.RateLimitDecision{}, errors.New("window must be positive")
	}

	nowMs := at.UnixMilli()
	reply, err := allowAttemptScript.Run(ctx, r.client, []string{r.key(identifier)},
		nowMs,
		window.Milliseconds(),
		limit,
		r.cfg.TTL.Milliseconds(),
		uuid.NewString(),
	).Slice()
	if err != nil {
		return port.RateLimitDecision{}, fmt.Errorf("redis rate limit script: %w", err)
	}
	if len(reply) != 3 {
		return port.RateLimitDecision{}, fmt.Errorf("unexpected script reply of %d values", len(reply))
	}

	allowed, _ := reply[0].(int64)
	if allowed == 1 {
		remaining, _ := reply[1].(int64)
		return port.RateLimitDecision{Allowed: true, Remaining: int(remaining)}, nil
	}

	oldestRaw, _ := reply[2].(string)
	oldestMs, err := strconv.ParseFloat(oldestRaw, 64)
	if err != nil {
		return port.RateLimitDecision{}, fmt.Errorf("parse oldest attempt score %q: %w", oldestRaw, err)
	}

	retry := time.Duration(int64(oldestMs)+window.Milliseconds()-nowMs) * time.Millisecond
	if retry < 0 {
		retry = 0
	}
	return port.RateLimitDecision{Allowed: false, RetryAfter: retry}, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	if r.cfg.KeyPrefix == "" {
		return identifier
	}
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, identifier)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
