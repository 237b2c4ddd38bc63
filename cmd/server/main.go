// Package main is the entrypoint for the cvforge API server.
package main

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

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/cvforge/internal/ai"
	"github.com/kiranshivaraju/cvforge/internal/api"
	"github.com/kiranshivaraju/cvforge/internal/api/handler"
	mw "github.com/kiranshivaraju/cvforge/internal/api/middleware"
	"github.com/kiranshivaraju/cvforge/internal/api/response"
	"github.com/kiranshivaraju/cvforge/internal/blob"
	"github.com/kiranshivaraju/cvforge/internal/cache"
	"github.com/kiranshivaraju/cvforge/internal/config"
	"github.com/kiranshivaraju/cvforge/internal/pipeline"
	"github.com/kiranshivaraju/cvforge/internal/store"
	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; real deployments inject env vars.
	_ = godotenv.Load()

	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"standard_provider", cfg.AI.Standard.Provider,
		"finetuned_provider", cfg.AI.FineTuned.Provider,
		"env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create blob store
	blobStore, err := blob.NewMinioStore(cfg.Blob)
	if err != nil {
		return fmt.Errorf("create blob store: %w", err)
	}
	if err := blobStore.Ping(ctx); err != nil {
		return fmt.Errorf("ping blob store: %w", err)
	}
	slog.Info("blob store connected", "endpoint", cfg.Blob.Endpoint, "bucket", cfg.Blob.Bucket)

	// 6. Create AI adapters, one per generation variant
	standard, err := ai.NewAdapter(cfg.AI.Standard, cfg.AI)
	if err != nil {
		return fmt.Errorf("create standard adapter: %w", err)
	}
	fineTuned, err := ai.NewAdapter(cfg.AI.FineTuned, cfg.AI)
	if err != nil {
		return fmt.Errorf("create fine-tuned adapter: %w", err)
	}
	slog.Info("ai adapters initialized",
		"standard", standard.Name(), "fine_tuned", fineTuned.Name())

	// 7. Create store and pipeline services
	pgStore := store.NewPostgresStore(pool)

	uploadSvc := pipeline.NewUploadService(blobStore, pgStore, redisCache, standard,
		cfg.Blob.Bucket, cfg.Blob.URLExpiry, cfg.Upload.MaxCVBytes)
	generateSvc := pipeline.NewGenerateService(blobStore, pgStore,
		map[jobkey.Variant]models.Adapter{
			jobkey.VariantStandard:  standard,
			jobkey.VariantFineTuned: fineTuned,
		},
		cfg.Blob.Bucket, cfg.Blob.URLExpiry, cfg.AI.InferenceTimeout)

	// 8. Build router with dependencies
	deps := api.Dependencies{
		RateLimit:      mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMin),
		AllowedOrigins: cfg.CORS.AllowedOrigins,

		HealthHandler:         healthHandler(pgStore, redisCache, blobStore),
		UploadHandler:         handler.NewUploadHandler(uploadSvc, uploadBodyLimit(cfg.Upload.MaxCVBytes)),
		GenerateHandler:       handler.NewGenerateHandler(generateSvc, jobkey.VariantStandard),
		GeneratePhase2Handler: handler.NewGenerateHandler(generateSvc, jobkey.VariantFineTuned),
		StatusHandler:         handler.NewStatusHandler(redisCache),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// uploadBodyLimit leaves headroom above the CV cap for the job-offer text and
// multipart framing.
func uploadBodyLimit(maxCVBytes int64) int64 {
	return maxCVBytes + 1<<20
}

// healthHandler checks database, cache and blob store connectivity.
func healthHandler(s store.Store, c cache.Cache, b blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
			"blob":     "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}
		if err := b.Ping(r.Context()); err != nil {
			checks["blob"] = "degraded"
		}

		for _, v := range checks {
			if v != "ok" {
				response.JSON(w, http.StatusServiceUnavailable, map[string]any{
					"status":   "degraded",
					"services": checks,
				})
				return
			}
		}

		response.OK(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
