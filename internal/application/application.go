package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/smartpack/internal/api"
	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/config"
	"github.com/eugenenazirov/smartpack/internal/engine"
	"github.com/eugenenazirov/smartpack/internal/session"
)

// janitorInterval is how often expired sessions are reaped.
const janitorInterval = time.Minute

// App encapsulates the application dependencies and HTTP server.
type App struct {
	catalog  *catalog.Catalog
	engine   engine.Engine
	sessions *session.MemoryStore
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server

	stopJanitor context.CancelFunc
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	cat, err := LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	eng := engine.New(cat)
	store := NewSessionStore(cfg, cat, eng, logger)
	handler := api.NewHandler(cat, store, api.WithDefaultDatasetSize(cfg.DatasetSize))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler, err := BuildRootHandler(apiRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		catalog:  cat,
		engine:   eng,
		sessions: store,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, rootHandler),
	}, nil
}

// LoadCatalog returns the catalog from path, or the built-in catalog when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

// NewSessionStore builds the session store described by cfg.
func NewSessionStore(cfg config.Config, cat *catalog.Catalog, eng engine.Engine, logger *zap.Logger) *session.MemoryStore {
	return session.NewMemoryStore(cat, eng,
		session.WithLogger(logger),
		session.WithTTL(cfg.SessionTTL),
		session.WithMaxSessions(cfg.MaxSessions),
		session.WithMaxDatasetSize(cfg.MaxDatasetSize),
		session.WithBaseSeed(cfg.Seed),
	)
}

// BuildRootHandler constructs the root HTTP handler that serves static files and routes API requests.
func BuildRootHandler(apiHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()

	staticPath, err := resolveProjectPath(filepath.Join("web", "static"))
	if err != nil {
		return nil, err
	}
	staticDir := http.Dir(staticPath)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(staticDir)))
	mux.Handle("/api/", apiHandler)

	indexPath, err := resolveProjectPath(filepath.Join("web", "templates", "index.html"))
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the session janitor and the HTTP server in background goroutines.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopJanitor = cancel
	go a.sessions.Janitor(ctx, janitorInterval)

	a.server.RegisterOnShutdown(a.Stop)

	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.Int("catalog_products", len(a.catalog.Products)),
			zap.Int("catalog_cities", len(a.catalog.Cities)),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop halts background work started by Start. It is safe to call more than once.
func (a *App) Stop() {
	if a.stopJanitor != nil {
		a.stopJanitor()
	}
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
