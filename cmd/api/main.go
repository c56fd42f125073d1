// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Command api is the entry point for the Lumen portfolio API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the configured storage backend (memory, SQLite, or Redis).
//  4. Run database migrations when SQLite is in play (idempotent).
//  5. Wire repositories, the content facade, and HTTP handlers.
//  6. Seed development fixtures when enabled.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evkarin/lumen/internal/api"
	"github.com/evkarin/lumen/internal/blog"
	"github.com/evkarin/lumen/internal/content"
	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/gallery"
	"github.com/evkarin/lumen/internal/platform/config"
	"github.com/evkarin/lumen/internal/platform/constants"
	"github.com/evkarin/lumen/internal/platform/migration"
	redisstore "github.com/evkarin/lumen/internal/platform/redis"
	sqlitestore "github.com/evkarin/lumen/internal/platform/sqlite"
	"github.com/evkarin/lumen/internal/seed"
	"github.com/evkarin/lumen/internal/storage"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Lumen] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Storage ────────────────────────────────────────────────────────
	var (
		postStore       entity.Adapter[*blog.BlogPost]
		collectionStore entity.Adapter[*gallery.GalleryCollection]
		health          api.HealthDependencies
	)

	newPost := func() *blog.BlogPost { return &blog.BlogPost{} }
	newCollection := func() *gallery.GalleryCollection { return &gallery.GalleryCollection{} }

	switch cfg.StorageDriver {
	case config.DriverMemory:
		postStore = storage.NewMemory(newPost)
		collectionStore = storage.NewMemory(newCollection)

	case config.DriverSQLite:
		db, err := sqlitestore.Open(cfg.DatabasePath, log)
		must(log, err, "open sqlite database")
		defer func() {
			log.Info("closing sqlite database")
			if cerr := db.Close(); cerr != nil {
				log.Error("sqlite close error", slog.Any("error", cerr))
			}
		}()

		// ── 4. Migrations ─────────────────────────────────────────────────
		must(log, migration.RunUp(cfg.DatabasePath, cfg.MigrationPath, log), "run migrations")

		postStore = storage.NewSQLite(db, constants.KindBlogPost, newPost)
		collectionStore = storage.NewSQLite(db, constants.KindGalleryCollection, newCollection)
		health.CheckDatabase = func() error {
			return sqlitestore.Ping(context.Background(), db)
		}

	case config.DriverRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		postStore = storage.NewRedis(rdb, constants.KindBlogPost, newPost)
		collectionStore = storage.NewRedis(rdb, constants.KindGalleryCollection, newCollection)
		health.CheckCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	postRepository := blog.NewRepository(postStore, log)
	collectionRepository := gallery.NewRepository(collectionStore, log)
	contentService := content.NewService(postRepository, collectionRepository, log)

	liveness, readiness := api.NewHealthHandlers(health, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Blog:      blog.NewHandler(postRepository),
		Gallery:   gallery.NewHandler(collectionRepository),
		Content:   content.NewHandler(contentService),
	}

	// ── 6. Development Fixtures ───────────────────────────────────────────
	if cfg.SeedData && cfg.IsDevelopment() {
		must(log, seed.Run(startupCtx, postRepository, collectionRepository, log), "seed fixtures")
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
