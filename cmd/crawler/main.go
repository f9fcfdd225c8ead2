// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command crawler is the entry point for the Yomira chapter crawler.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build the shared outbound HTTP client and the MangaDex client.
//  6. Wire the crawler and library domains.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-crawler/internal/api"
	"github.com/taibuivan/yomira-crawler/internal/crawler"
	"github.com/taibuivan/yomira-crawler/internal/library"
	"github.com/taibuivan/yomira-crawler/internal/mangadex"
	"github.com/taibuivan/yomira-crawler/internal/platform/config"
	"github.com/taibuivan/yomira-crawler/internal/platform/constants"
	"github.com/taibuivan/yomira-crawler/internal/platform/httpclient"
	"github.com/taibuivan/yomira-crawler/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-crawler/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-crawler/internal/platform/redis"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

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
		slog.String("rate_limit_policy", cfg.RateLimitPolicy),
		slog.Int("fetch_parallelism", cfg.FetchParallelism),
	)

	// Catch misconfiguration quickly rather than hanging on a dead host.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Upstream ───────────────────────────────────────────────────────
	httpClient, err := httpclient.New(httpclient.Options{
		APIURL:    cfg.MangaDexAPIURL,
		APIKey:    cfg.MangaDexAPIKey,
		UserAgent: cfg.UserAgent,
		RPS:       cfg.OutboundRPS,
		Burst:     cfg.OutboundBurst,
	})
	must(log, err, "build http client")

	mangadexClient := mangadex.NewClient(httpClient, mangadex.Options{
		APIURL:     cfg.MangaDexAPIURL,
		UploadsURL: cfg.MangaDexUploadsURL,
		Timeout:    cfg.MetadataTimeout,
	})

	// ── 6. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	scheduler := crawler.NewScheduler(httpClient, crawler.SchedulerOptions{
		PageTimeout: cfg.PageTimeout,
		Parallelism: cfg.FetchParallelism,
	}, log)

	crawlerService := crawler.NewService(
		mangadexClient,
		scheduler,
		crawler.NewPageRepository(pool),
		limitPolicy(cfg, rdb, log),
		crawler.NewRedisChapterLock(rdb, cfg.ChapterLockTTL),
		log,
	)

	libraryService := library.NewService(
		mangadexClient,
		library.NewMangaRepository(pool),
		library.NewRedisSearchCache(rdb, cfg.SearchCacheTTL),
		log,
	)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Crawler:   crawler.NewHandler(crawlerService),
		Library:   library.NewHandler(libraryService),
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
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
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the process-wide JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// limitPolicy maps RATE_LIMIT_POLICY to a [crawler.LimitPolicy].
func limitPolicy(cfg *config.Config, rdb *goredis.Client, log *slog.Logger) crawler.LimitPolicy {
	switch cfg.RateLimitPolicy {
	case config.PolicyIgnore:
		return crawler.IgnoreLimit{}
	case config.PolicyAbort:
		return crawler.AbortOnLimit{}
	default:
		return crawler.NewCooldownPolicy(rdb, log)
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
