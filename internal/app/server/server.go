package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"flms/internal/domain/directory"
	"flms/internal/domain/leave"
	"flms/internal/domain/notifications"
	"flms/internal/domain/timetable"
	"flms/internal/platform/config"
	"flms/internal/platform/db"
	"flms/internal/platform/email"
	"flms/internal/platform/jobs"
	authhandler "flms/internal/transport/http/handlers/auth"
	directoryhandler "flms/internal/transport/http/handlers/directory"
	leavehandler "flms/internal/transport/http/handlers/leave"
	notificationshandler "flms/internal/transport/http/handlers/notifications"
	timetablehandler "flms/internal/transport/http/handlers/timetable"
	"flms/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New connects, migrates, seeds and wires the full application. Callers
// own the returned App and must Close it.
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

	directoryStore := directory.NewStore(pool)
	timetableStore := timetable.NewStore(pool)
	timetableSvc := timetable.NewService(timetableStore, directoryStore)
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom, cfg.EmailEnabled)
	leaveSvc := leave.NewService(leave.NewStore(pool), directoryStore, timetableSvc, timetableStore, notifySvc)

	jobsSvc := jobs.New(pool, leaveSvc)
	jobsSvc.Start(ctx, cfg.YearlyResetInterval)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(cfg.JWTSecret))

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
		authhandler.NewHandler(directoryStore, cfg.JWTSecret).RegisterRoutes(r)
		directoryhandler.NewHandler(directoryStore).RegisterRoutes(r)
		timetablehandler.NewHandler(timetableStore, timetableSvc).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("leave management server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
