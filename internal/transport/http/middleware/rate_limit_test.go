package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/sophia-kim26/koreanschool-attendance/internal/repository/memory"
)

func newLimitedRouter(t *testing.T, limiter *RateLimiter, rule RateLimitRule) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(EnrichContext())
	r.POST("/limited", limiter.Limit(rule), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	limiter := NewRateLimiter(memory.NewRateLimitStore(), zaptest.NewLogger(t))
	rule := RateLimitRule{Name: "signin", Limit: 3, Window: time.Minute}
	r := newLimitedRouter(t, limiter, rule)

	for i := 0; i < 3; i++ {
		rec := doRequest(r, "/limited", "203.0.113.7:51000")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := doRequest(r, "/limited", "203.0.113.7:51000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected zero remaining, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("unmarshal problem payload: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests {
		t.Fatalf("expected problem status 429, got %d", problem.Status)
	}
	if problem.Title != rateLimitProblemTitle {
		t.Fatalf("unexpected problem title %q", problem.Title)
	}
	if problem.Instance != "/limited" {
		t.Fatalf("unexpected problem instance %q", problem.Instance)
	}

	// A different source address has its own window.
	if rec := doRequest(r, "/limited", "203.0.113.8:51000"); rec.Code != http.StatusOK {
		t.Fatalf("expected isolated window per address, got %d", rec.Code)
	}
}

func TestRateLimiterWindowRollover(t *testing.T) {
	current := time.Now()
	limiter := NewRateLimiter(memory.NewRateLimitStore(), zaptest.NewLogger(t)).
		WithClock(func() time.Time { return current })
	rule := RateLimitRule{Name: "create-account", Limit: 2, Window: 10 * time.Minute}
	r := newLimitedRouter(t, limiter, rule)

	for i := 0; i < 2; i++ {
		if rec := doRequest(r, "/limited", "203.0.113.9:51000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if rec := doRequest(r, "/limited", "203.0.113.9:51000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside window, got %d", rec.Code)
	}

	current = current.Add(10*time.Minute + time.Second)

	if rec := doRequest(r, "/limited", "203.0.113.9:51000"); rec.Code != http.StatusOK {
		t.Fatalf("expected window rollover to admit, got %d", rec.Code)
	}
}

func TestRateLimiterConcurrentRequestsRespectLimit(t *testing.T) {
	limiter := NewRateLimiter(memory.NewRateLimitStore(), zaptest.NewLogger(t))
	rule := RateLimitRule{Name: "signin", Limit: 1, Window: time.Minute}
	r := newLimitedRouter(t, limiter, rule)

	// Simultaneous requests from one address must not all see the
	// pre-write count; exactly one gets the single slot.
	var wg sync.WaitGroup
	var admitted int64
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rec := doRequest(r, "/limited", "203.0.113.11:51000"); rec.Code == http.StatusOK {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Fatalf("expected exactly one of 5 concurrent requests admitted, got %d", admitted)
	}
}

func TestRateLimiterUnregisteredRouteUnlimited(t *testing.T) {
	limiter := NewRateLimiter(memory.NewRateLimitStore(), zaptest.NewLogger(t))
	rule := RateLimitRule{Name: "signin", Limit: 1, Window: time.Minute}
	r := newLimitedRouter(t, limiter, rule)

	for i := 0; i < 5; i++ {
		if rec := doRequest(r, "/open", "203.0.113.10:51000"); rec.Code != http.StatusOK {
			t.Fatalf("expected unlimited route to admit, got %d", rec.Code)
		}
	}
}
