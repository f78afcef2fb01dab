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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/metrics"
	"github.com/starford/folio/internal/notestore"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/watch"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("storage_key", cfg.Storage.Key),
		slog.Int("quota_bytes", cfg.Storage.QuotaBytes),
		slog.String("log_level", cfg.App.LogLevel.String()))

	provider, err := storage.Open(cfg.Storage.Options(logger))
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer provider.Close()

	broker := sse.NewBroker(cfg.App.Events.TreeThrottle)
	defer broker.Close()

	var watcher *watch.Watcher
	if fs := fsProvider(provider); fs != nil {
		watcher = watch.New(fs, cfg.Storage.Key, logger, func(string) {
			metrics.ObserveLoad("external")
			broker.PublishChange("reloaded", "data", "")
		})
		if cfg.App.Events.WatchDebounce > 0 {
			watcher.Debounce = cfg.App.Events.WatchDebounce
		}
	}

	store := notestore.New(provider,
		notestore.WithKey(cfg.Storage.Key),
		notestore.WithLogger(logger),
		notestore.WithHook(func(c notestore.Change) {
			if watcher != nil {
				watcher.Expect(c.Checksum)
			}
			broker.PublishChange(string(c.Kind), c.Entity, c.ID)
		}),
	)

	// Surface integrity problems at startup; the data is left untouched.
	if issues, err := store.Check(ctx); err != nil {
		logger.Warn("initial integrity check failed", slog.String("error", err.Error()))
	} else if len(issues) > 0 {
		logger.Warn("stored data has integrity issues, run `folio check --repair`",
			slog.Int("issues", len(issues)))
	}

	apiRouter := api.NewRouter(store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.Load(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if watcher != nil {
		g.Go(func() error {
			if err := watcher.Run(gCtx); err != nil {
				logger.Warn("blob watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// logger builds the JSON logger and installs it as the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// fsProvider returns the fs backend behind p, if any.
func fsProvider(p storage.Provider) *storage.FS {
	for {
		switch v := p.(type) {
		case *storage.FS:
			return v
		case interface{ Unwrap() storage.Provider }:
			p = v.Unwrap()
		default:
			return nil
		}
	}
}

// openStore opens the configured backend and a store over it.
func openStore(cfg *Config, logger *slog.Logger) (*notestore.Store, storage.Provider, error) {
	provider, err := storage.Open(cfg.Storage.Options(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	store := notestore.New(provider, notestore.WithKey(cfg.Storage.Key), notestore.WithLogger(logger))
	return store, provider, nil
}
