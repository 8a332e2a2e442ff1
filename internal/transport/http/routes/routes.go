package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/config"
	"github.com/sophia-kim26/koreanschool-attendance/internal/transport/http/handlers"
	"github.com/sophia-kim26/koreanschool-attendance/internal/transport/http/middleware"
	"github.com/sophia-kim26/koreanschool-attendance/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Credentials *usecase.CredentialService
	Shifts      *usecase.ShiftService
	Attendance  *usecase.AttendanceService
	Calendar    *usecase.CalendarService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	signinRule := middleware.RateLimitRule{
		Name:   "signin",
		Limit:  deps.Config.RateLimit.SigninMaxAttempts,
		Window: deps.Config.RateLimit.SigninWindow,
	}
	createRule := middleware.RateLimitRule{
		Name:   "create-account",
		Limit:  deps.Config.RateLimit.CreateMaxAttempts,
		Window: deps.Config.RateLimit.CreateWindow,
	}

	workerToken := middleware.RequireWorkerToken(
		deps.Config.Auth.TokenSigningKey,
		deps.Config.Auth.TokenIssuer,
	)

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Credentials)
		api.POST("/auth/signin", deps.RateLimiter.Limit(signinRule), authHandler.Signin)

		workerHandler := handlers.NewWorkerHandler(deps.Services.Credentials)
		shiftHandler := handlers.NewShiftHandler(deps.Services.Shifts, deps.Services.Attendance)

		workers := api.Group("/workers")
		workers.POST("", deps.RateLimiter.Limit(createRule), workerHandler.Create)
		workers.GET("", workerHandler.List)
		workers.POST("/:id/pin/reset", workerHandler.ResetPIN)
		workers.DELETE("/:id", workerHandler.Deactivate)
		workers.GET("/:id/shifts", shiftHandler.ListForWorker)
		workers.GET("/:id/attendance", shiftHandler.Attendance)
		workers.GET("/:id/hours", shiftHandler.Hours)

		// Admin-initiated creation shares the handler but skips the limiter.
		api.POST("/admin/workers", workerHandler.Create)

		shifts := api.Group("/shifts")
		shifts.POST("/clock-in", workerToken, shiftHandler.ClockIn)
		shifts.POST("/clock-out", workerToken, shiftHandler.ClockOut)
		shifts.GET("/active", shiftHandler.Active)
		shifts.POST("/manual", shiftHandler.CreateManual)
		shifts.PUT("/:id", shiftHandler.Update)

		calendarHandler := handlers.NewCalendarHandler(deps.Services.Calendar)
		api.PUT("/calendar/dates", calendarHandler.Replace)
		api.GET("/calendar/dates", calendarHandler.List)
	}

	return r
}
