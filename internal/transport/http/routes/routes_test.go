package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/config"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository/memory"
	"github.com/sophia-kim26/koreanschool-attendance/internal/transport/http/middleware"
)

func testDependencies(t *testing.T) Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{}
	cfg.App.Env = "test"
	cfg.Auth.TokenIssuer = "ta-attendance"
	cfg.Auth.TokenSigningKey = "test-key"
	cfg.RateLimit.SigninWindow = time.Minute
	cfg.RateLimit.SigninMaxAttempts = 20
	cfg.RateLimit.CreateWindow = 10 * time.Minute
	cfg.RateLimit.CreateMaxAttempts = 5

	return Dependencies{
		Config:      cfg,
		Logger:      zaptest.NewLogger(t),
		RateLimiter: middleware.NewRateLimiter(memory.NewRateLimitStore(), zaptest.NewLogger(t)),
	}
}

func TestRegisterHealthEndpoints(t *testing.T) {
	r := Register(testDependencies(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected readyz 200 with no checks, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
}

func TestSigninValidatesPayloadBeforeService(t *testing.T) {
	r := Register(testDependencies(t))

	body := strings.NewReader(`{"email": "not-an-email", "pin": "123456"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed email, got %d", rec.Code)
	}
}

func TestClockInRequiresBearerToken(t *testing.T) {
	r := Register(testDependencies(t))

	body := strings.NewReader(`{"worker_id": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/clock-in", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
