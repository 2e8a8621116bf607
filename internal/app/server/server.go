package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leavehq/internal/domain/auth"
	"leavehq/internal/domain/directory"
	"leavehq/internal/domain/leave"
	"leavehq/internal/platform/config"
	"leavehq/internal/platform/db"
	"leavehq/internal/platform/email"
	authhandler "leavehq/internal/transport/http/handlers/auth"
	balanceshandler "leavehq/internal/transport/http/handlers/balances"
	directoryhandler "leavehq/internal/transport/http/handlers/directory"
	leavetypeshandler "leavehq/internal/transport/http/handlers/leavetypes"
	reportshandler "leavehq/internal/transport/http/handlers/reports"
	"leavehq/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	Leave   *leave.Service
	Catalog *leave.Catalog
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

	directoryService := directory.NewService(directory.NewStore(pool))
	leaveStore := leave.NewStore(pool)
	leaveService := leave.NewService(leaveStore, directoryService)
	catalog := leave.NewCatalog(leaveStore)

	blacklist := auth.NewBlacklist()
	authService := &auth.Service{
		Store:     auth.NewStore(pool),
		Blacklist: blacklist,
		Mailer:    email.New(cfg),
		Secret:    cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		ResetTTL:  cfg.ResetTokenTTL,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, blacklist))

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

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService).RegisterRoutes(r)
		leavetypeshandler.NewHandler(catalog).RegisterRoutes(r)
		balanceshandler.NewHandler(leaveService).RegisterRoutes(r)
		directoryhandler.NewHandler(directoryService).RegisterRoutes(r)
		reportshandler.NewHandler(leaveService, cfg.LowBalanceThreshold).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Leave:   leaveService,
		Catalog: catalog,
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
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

	if cfg.InitBalancesOnBoot {
		year := time.Now().Year()
		if results, err := app.Leave.InitializeAllUsersForYear(ctx, year); err != nil {
			slog.Error("startup balance init failed", "year", year, "err", err)
		} else {
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
				}
			}
			slog.Info("startup balance init done", "year", year, "users", len(results), "failed", failed)
		}
	}

	slog.Info("leave server listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
