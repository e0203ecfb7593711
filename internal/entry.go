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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/saigoneats/internal/api"
	"github.com/starford/saigoneats/internal/catalog"
	"github.com/starford/saigoneats/internal/feed"
	"github.com/starford/saigoneats/internal/mcpserver"
	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/query"
	"github.com/starford/saigoneats/internal/queue"
	"github.com/starford/saigoneats/internal/sse"
	"github.com/starford/saigoneats/internal/storage"
	"github.com/starford/saigoneats/internal/venueservice"
)

const venuesThrottle = 2 * time.Second

// components are the pieces shared by the HTTP and MCP entry points.
type components struct {
	logger *slog.Logger
	store  *catalog.Store
	db     *feed.DB
	src    *storage.File
	svc    *venueservice.Service
}

func (c *components) Close() {
	if err := c.db.Close(); err != nil {
		c.logger.Warn("close feed db", slog.String("error", err.Error()))
	}
}

// build opens storage and the feed, wires the service and runs the
// initial sync. pub may be nil.
func build(ctx context.Context, app *application, pub venueservice.Publisher) (*components, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("locale", cfg.Catalog.Tag().String()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("moderation_queue", cfg.Feed.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(filepath.Dir(cfg.Catalog.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	src, err := storage.NewFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := feed.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init feed: %w", err)
	}

	store := catalog.New(
		catalog.WithLogger(logger),
		catalog.WithEngine(query.NewEngine(cfg.Catalog.Tag())),
		catalog.WithOnChange(func(st catalog.Stats) {
			logger.Debug("catalog recomputed",
				slog.Int("merged", st.Merged),
				slog.Int("results", st.Results))
		}),
	)

	opts := []venueservice.Option{venueservice.WithLogger(logger)}
	if pub != nil {
		opts = append(opts, venueservice.WithPublisher(pub))
	}
	svc := venueservice.NewService(store, db, src, opts...)

	if _, err := svc.Resync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	st := store.Stats()
	logger.Info("Catalog loaded",
		slog.Int("curated", st.Curated),
		slog.Int("submissions", st.Submissions),
		slog.Int("merged", st.Merged))

	return &components{logger: logger, store: store, db: db, src: src, svc: svc}, nil
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)

	broker := sse.NewBroker(venuesThrottle)
	defer broker.Close()

	c, err := build(ctx, app, broker)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg := app.config
	logger := c.logger

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","venues":%d}`, c.store.Stats().Merged)
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Catalog.Watch {
		g.Go(func() error {
			err := feed.Watch(gCtx, c.src, c.db, c.store, logger, func(meta models.SourceMeta) {
				broker.PublishChange(sse.KindCatalogReloaded, "")
			})
			if err != nil {
				// The service still works without live reload.
				logger.Warn("catalog watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if cfg.Feed.Enabled() {
		consumer := queue.NewConsumer(cfg.Feed.AMQPURL, cfg.Feed.Queue, c.svc, logger)
		g.Go(func() error {
			return consumer.Run(gCtx)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Unblock the watcher and the queue consumer.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the directory over MCP on stdin/stdout until the client
// disconnects. Logs go to stderr unless overridden.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))

	c, err := build(ctx, app, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(c.svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
