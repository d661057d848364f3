package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ghpayroll/internal/domain/auth"
	"ghpayroll/internal/domain/employee"
	"ghpayroll/internal/domain/payroll"
	"ghpayroll/internal/platform/config"
	"ghpayroll/internal/platform/crypto"
	"ghpayroll/internal/platform/db"
	"ghpayroll/internal/platform/jobs"
	"ghpayroll/internal/platform/metrics"
	"ghpayroll/internal/transport/http/api"
	authhandler "ghpayroll/internal/transport/http/handlers/auth"
	employeeshandler "ghpayroll/internal/transport/http/handlers/employees"
	payrollhandler "ghpayroll/internal/transport/http/handlers/payroll"
	"ghpayroll/internal/transport/http/middleware"
)

type App struct {
	Config    config.Config
	Router    http.Handler
	Rates     *payroll.Registry
	Employees *employee.Service
	Jobs      *jobs.Service
	Metrics   *metrics.Collector

	closers []func()
}

// New wires the store, rate tables, job runner and router for cfg. Jobs run
// until ctx is done; Close releases the store.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("data encryption key: %w", err)
	}
	rates, err := payroll.LoadRegistry(cfg.RatesFile, cfg.DefaultRateTable)
	if err != nil {
		return nil, fmt.Errorf("load rate tables: %w", err)
	}

	app := &App{Config: cfg, Rates: rates}
	store, err := app.openStore(ctx, cipher)
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.MetricsEnabled {
		app.Metrics = metrics.New()
	}
	app.Employees = employee.NewService(store, rates,
		employee.WithMetrics(app.Metrics),
		employee.WithWorkers(cfg.BatchWorkers),
	)
	if cfg.RunSeed {
		if err := db.Seed(ctx, app.Employees); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app.Jobs = jobs.New()
	app.Jobs.Start(ctx)
	app.Router = app.routes()
	return app, nil
}

func (a *App) openStore(ctx context.Context, cipher *crypto.Cipher) (employee.Repository, error) {
	switch a.Config.StoreDriver {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if a.Config.RunMigrations {
			if err := db.MigratePostgres(pool); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return employee.NewPostgresStore(pool, cipher), nil
	case config.StoreSQLite:
		sqlDB, err := db.OpenSQLite(a.Config.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		if a.Config.RunMigrations {
			if err := db.MigrateSQLite(sqlDB); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return employee.NewSQLiteStore(sqlDB, cipher), nil
	default:
		return employee.NewMemoryStore(), nil
	}
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	var authSvc *auth.Service
	var verifier middleware.TokenVerifier
	if cfg.AuthEnabled() {
		authSvc = &auth.Service{
			Secret:       cfg.JWTSecret,
			TTL:          cfg.TokenTTL,
			AdminEmail:   cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			TOTPSecret:   cfg.AdminTOTPSecret,
		}
		verifier = authSvc
	}
	router.Use(middleware.Auth(verifier))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Employees.Store().Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if a.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	protect := middleware.RequireAuth(cfg.AuthEnabled())
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(authSvc).RegisterRoutes(r)

		payrollHandler := payrollhandler.NewHandler(a.Rates, a.Employees, a.Jobs, a.Metrics, cfg.BatchWorkers, cfg.Currency)
		payrollHandler.RegisterRoutes(r, protect)

		r.Group(func(r chi.Router) {
			r.Use(protect)
			employeesHandler := employeeshandler.NewHandler(a.Employees, cfg.CompanyName, cfg.Currency)
			employeesHandler.RegisterRoutes(r)
		})
	})
	return router
}

// Close releases store connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func Run() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("payroll server listening",
			"addr", cfg.Addr,
			"store", cfg.StoreDriver,
			"defaultRateTable", app.Rates.DefaultName(),
			"auth", cfg.AuthEnabled(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
		slog.Info("payroll server stopped")
	}
}
