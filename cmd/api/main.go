// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

// Command api is the entry point for the Encre HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Load the token verifier and the title blocklist.
//  7. Wire the resource engine and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/encre-app/encre/internal/api"
	"github.com/encre-app/encre/internal/core/author"
	"github.com/encre-app/encre/internal/core/book"
	"github.com/encre-app/encre/internal/core/chapter"
	"github.com/encre-app/encre/internal/core/character"
	"github.com/encre-app/encre/internal/core/resource"
	"github.com/encre-app/encre/internal/core/series"
	"github.com/encre-app/encre/internal/platform/config"
	"github.com/encre-app/encre/internal/platform/constants"
	"github.com/encre-app/encre/internal/platform/migration"
	pgstore "github.com/encre-app/encre/internal/platform/postgres"
	redisstore "github.com/encre-app/encre/internal/platform/redis"
	"github.com/encre-app/encre/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any(constants.FieldError, cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Verifier & Blocklist ───────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token verifier")

	blocklist, err := resource.LoadBlocklist(cfg.TitleBlocklistPath)
	must(log, err, "load title blocklist")
	log.Info("title_blocklist_loaded", slog.Int("entries", blocklist.Len()))

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	engine := resource.NewEngine(resource.NewPostgresRepository(pool), resource.Limits{
		SeriesPerAuthor: cfg.MaxSeriesPerAuthor,
		BooksPerSerie:   cfg.MaxBooksPerSerie,
		ChaptersPerBook: cfg.MaxChaptersPerBook,
	}, blocklist, log)

	authorService := author.NewService(author.NewPostgresRepository(pool), author.NewRedisCache(rdb), cfg.AuthorCacheTTL, log)
	chapterService := chapter.NewService(engine, chapter.NewContentRepository(pool), log)
	characterService := character.NewService(engine, character.NewPostgresRepository(pool), log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Author:    author.NewHandler(authorService),
		Series:    series.NewHandler(series.NewService(engine)),
		Book:      book.NewHandler(book.NewService(engine)),
		Chapter:   chapter.NewHandler(chapterService),
		Character: character.NewHandler(characterService),
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, verifier, authorService, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any(constants.FieldError, err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any(constants.FieldError, err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger every entry of this process goes through.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "encre"))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and handled.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any(constants.FieldError, err),
		)
		os.Exit(1)
	}
}
