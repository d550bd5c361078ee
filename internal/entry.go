// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/gazette/internal/api"
	"github.com/starford/gazette/internal/collections"
	"github.com/starford/gazette/internal/contentservice"
	"github.com/starford/gazette/internal/devserver"
	"github.com/starford/gazette/internal/index"
	"github.com/starford/gazette/internal/mcpserver"
	"github.com/starford/gazette/internal/metrics"
	"github.com/starford/gazette/internal/site"
	"github.com/starford/gazette/internal/sse"
	"github.com/starford/gazette/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{mode: ModeBuild, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.logOut == nil {
		app.logOut = os.Stdout
		if app.mode == ModeMCP {
			app.logOut = os.Stderr
		}
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", app.mode),
		slog.String("root", cfg.Site.Root),
		slog.String("env", cfg.Site.Env),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	switch app.mode {
	case ModeBuild:
		_, err = rt.site.Build(ctx)
		return err
	case ModeServe:
		return serve(ctx, cfg, rt, logger)
	case ModeMCP:
		return serveMCP(ctx, cfg, rt, app.version, logger)
	}
	return fmt.Errorf("unknown mode %q", app.mode)
}

// runtime holds the components shared by every mode.
type runtime struct {
	layout   site.Layout
	meta     site.Metadata
	store    *storage.FS
	db       *index.DB
	recorder *metrics.PrometheusRecorder
	site     *site.Site
}

func newRuntime(cfg *Config, logger *slog.Logger) (*runtime, error) {
	root, err := filepath.Abs(cfg.Site.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve site root: %w", err)
	}

	paths, err := site.LoadPaths(root, cfg.Site.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load paths: %w", err)
	}
	layout := paths.Resolve(root)

	meta, err := site.LoadMetadata(layout.Data)
	if err != nil {
		return nil, fmt.Errorf("load site metadata: %w", err)
	}

	// Ensure output directory exists.
	if err := os.MkdirAll(layout.Output, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	// The admin app is copied verbatim, never rendered.
	store, err := storage.NewFS(layout.Src, "admin")
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	s := site.New(db, store, site.Options{
		Layout:         layout,
		Meta:           meta,
		Env:            cfg.Site.Env,
		PageSize:       cfg.Site.PageSize,
		Language:       cfg.Site.Tag(),
		HighlightStyle: cfg.Site.HighlightStyle,
	}, logger, recorder)

	return &runtime{
		layout:   layout,
		meta:     meta,
		store:    store,
		db:       db,
		recorder: recorder,
		site:     s,
	}, nil
}

func (rt *runtime) contentService(cfg *Config) *contentservice.Service {
	return contentservice.NewService(rt.db, nil,
		collections.WithPageSize(cfg.Site.PageSize),
		collections.WithLanguage(cfg.Site.Tag()))
}

func serve(ctx context.Context, cfg *Config, rt *runtime, logger *slog.Logger) error {
	// A failed initial build aborts; later rebuild failures are only reported.
	if _, err := rt.site.Build(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	static, err := devserver.NewStatic(rt.layout.Output,
		devserver.WithLiveReload(),
		devserver.WithRecorder(rt.recorder))
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	rebuilder := devserver.NewRebuilder(rt.site, broker, cfg.Site.Debounce, logger)

	router := devserver.NewRouter(devserver.Routes{
		Static:  static,
		Reload:  broker,
		API:     api.NewRouter(rt.contentService(cfg), cfg.Auth.APIToken()),
		Metrics: rt.recorder.Handler(),
	})

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; every change schedules a debounced rebuild.
	g.Go(func() error {
		return index.Watch(gCtx, rt.db, rt.store, logger, func(kind, path string) {
			broker.PublishChange(kind, path)
			rebuilder.Trigger()
		}, filepath.Join(rt.layout.Root, "assets"), filepath.Join(rt.layout.Root, "static"))
	})

	g.Go(func() error {
		return rebuilder.Run(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown ends the errgroup after a clean server shutdown.
var errShutdown = errors.New("shutdown")

func serveMCP(ctx context.Context, cfg *Config, rt *runtime, version string, logger *slog.Logger) error {
	stats, err := index.Sync(rt.db, rt.store, logger)
	if err != nil {
		return fmt.Errorf("index sync: %w", err)
	}
	logger.Info("MCP index ready",
		slog.Int("indexed", stats.Indexed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("removed", stats.Removed))

	srv := mcpserver.New(rt.contentService(cfg), rt.meta.CloudinaryName, version)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
