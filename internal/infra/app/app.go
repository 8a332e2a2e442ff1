package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/config"
	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/database"
	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/logger"
	redisinfra "github.com/sophia-kim26/koreanschool-attendance/internal/infra/redis"
	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/security"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository/memory"
	postgresrepo "github.com/sophia-kim26/koreanschool-attendance/internal/repository/postgres"
	redisrepo "github.com/sophia-kim26/koreanschool-attendance/internal/repository/redis"
	"github.com/sophia-kim26/koreanschool-attendance/internal/transport/http/middleware"
	"github.com/sophia-kim26/koreanschool-attendance/internal/transport/http/routes"
	"github.com/sophia-kim26/koreanschool-attendance/internal/usecase"
)

// Application bundles the wired service and its long-lived resources.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

// New wires configuration, storage, services, and the HTTP engine.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	gate, err := security.NewLocationGate(cfg.Location.AllowedIPs, cfg.Location.AllowedCIDRs)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init location gate: %w", err)
	}

	// Redis is optional: single-classroom deployments run on the in-memory
	// limiter and lose nothing but cross-instance counter sharing.
	var (
		redisClient    *redisinfra.Client
		rateLimitStore port.RateLimitStore
		cacheChecker   routes.CacheChecker
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}

		window := cfg.RateLimit.SigninWindow
		if cfg.RateLimit.CreateWindow > window {
			window = cfg.RateLimit.CreateWindow
		}
		if window <= 0 {
			window = 10 * time.Minute
		}
		rateLimitStore = redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
			KeyPrefix: "ta:rate-limit",
			TTL:       window * 2,
		})
		cacheChecker = redisClient
	} else {
		log.Info("redis disabled, using in-memory rate limit store")
		rateLimitStore = memory.NewRateLimitStore()
	}

	repos := postgresrepo.NewRepositories(pool)

	credentialService := usecase.NewCredentialService(cfg, repos.Workers)
	shiftService := usecase.NewShiftService(repos.Workers, repos.Shifts, gate)
	attendanceService := usecase.NewAttendanceService(repos.Workers, repos.Shifts)
	calendarService := usecase.NewCalendarService(repos.Calendar)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "attendance"})
	if err != nil {
		pool.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: middleware.NewRateLimiter(rateLimitStore, log),
		Metrics:     metrics,
		Database:    pool,
		Cache:       cacheChecker,
		Services: routes.ServiceSet{
			Credentials: credentialService,
			Shifts:      shiftService,
			Attendance:  attendanceService,
			Calendar:    calendarService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and releases the pools.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting attendance API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
