package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendance/internal/domain/attendance"
	"attendance/internal/domain/auth"
	"attendance/internal/domain/leave"
	"attendance/internal/domain/reports"
	"attendance/internal/domain/schedule"
	"attendance/internal/domain/users"
	"attendance/internal/platform/config"
	"attendance/internal/platform/db"
	attendancehandler "attendance/internal/transport/http/handlers/attendance"
	authhandler "attendance/internal/transport/http/handlers/auth"
	leavehandler "attendance/internal/transport/http/handlers/leave"
	reportshandler "attendance/internal/transport/http/handlers/reports"
	schedulehandler "attendance/internal/transport/http/handlers/schedule"
	usershandler "attendance/internal/transport/http/handlers/users"
	"attendance/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Pool   *pgxpool.Pool
	Router http.Handler
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app := &App{Config: cfg, Pool: pool}
	app.Router = app.routes()
	return app, nil
}

func (a *App) Close() {
	a.Pool.Close()
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	pool := a.Pool

	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	leaveSvc := leave.NewService(pool)
	attendanceSvc := attendance.NewService(pool)
	scheduleSvc := schedule.NewService(pool)
	usersSvc := users.NewService(pool)
	reportsSvc := reports.NewService(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(max(cfg.RateLimitPerMinute/4, 1), time.Minute))
			authhandler.NewHandler(authSvc).RegisterRoutes(r)
		})

		leavehandler.NewHandler(leaveSvc).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc).RegisterRoutes(r)
		schedulehandler.NewHandler(scheduleSvc).RegisterRoutes(r)
		usershandler.NewHandler(usersSvc, authSvc, reportsSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc).RegisterRoutes(r)
	})

	return router
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
