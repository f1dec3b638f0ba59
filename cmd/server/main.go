// Package main is the entrypoint for the SkillForge API server.
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

	"github.com/mwhitfield/skillforge/internal/ai"
	"github.com/mwhitfield/skillforge/internal/ai/mock"
	"github.com/mwhitfield/skillforge/internal/ai/openai"
	"github.com/mwhitfield/skillforge/internal/api"
	"github.com/mwhitfield/skillforge/internal/api/handler"
	mw "github.com/mwhitfield/skillforge/internal/api/middleware"
	"github.com/mwhitfield/skillforge/internal/api/response"
	"github.com/mwhitfield/skillforge/internal/cache"
	"github.com/mwhitfield/skillforge/internal/config"
	"github.com/mwhitfield/skillforge/internal/publish"
	"github.com/mwhitfield/skillforge/internal/skills"
	"github.com/mwhitfield/skillforge/internal/storage"
	"github.com/mwhitfield/skillforge/internal/store"
	"github.com/mwhitfield/skillforge/pkg/models"
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
	// 1. Load config, failing fast when invalid
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"ai_provider", cfg.AI.Provider,
		"cache_backend", cfg.Cache.Backend,
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

	// 4. Create cache
	appCache, err := newCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer appCache.Close()

	if err := appCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping cache: %w", err)
	}
	slog.Info("cache ready", "backend", cfg.Cache.Backend)

	// 5. Create AI provider
	provider, err := newProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())

	// 6. Create store and services
	pgStore := store.NewPostgresStore(pool)

	limiter := ai.NewLimiter(cfg.AI.RateLimitRequests, cfg.AI.RateLimitWindow)
	analyzer := ai.NewAnalysisService(provider, limiter, pgStore, appCache, ai.Config{
		CacheTTL:    cfg.Cache.AnalysisTTL,
		CallTimeout: cfg.AI.RequestTimeout,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Retry:       ai.RetryConfig{MaxRetries: cfg.AI.MaxRetries},
	})

	var publisher publish.Client
	if cfg.Publish.Token != "" {
		publisher = publish.NewHTTPClient(cfg.Publish.BaseURL, cfg.Publish.Token, cfg.Publish.Timeout)
		slog.Info("publisher configured", "base_url", cfg.Publish.BaseURL)
	}

	var archives storage.ArchiveStore
	if cfg.Storage.Enabled {
		archives, err = storage.NewMinioStore(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("create archive store: %w", err)
		}
		slog.Info("archive store ready", "bucket", cfg.Storage.Bucket)
	}

	skillSvc := skills.NewService(analyzer, pgStore, publisher, archives)

	// 7. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(appCache, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:    healthHandler(pgStore, appCache),
		AnalyzeHandler:   handler.NewAnalyzeHandler(analyzer),
		GenerateHandler:  handler.NewGenerateHandler(skillSvc),
		ListSkills:       handler.NewListSkillsHandler(pgStore),
		GetSkill:         handler.NewGetSkillHandler(pgStore),
		UpdateSkill:      handler.NewUpdateSkillHandler(pgStore),
		DeleteSkill:      handler.NewDeleteSkillHandler(pgStore),
		ListVersions:     handler.NewListVersionsHandler(pgStore),
		ArchiveHandler:   handler.NewArchiveHandler(skillSvc),
		PublishHandler:   handler.NewPublishHandler(skillSvc),
		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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

func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL)
	case "memory":
		return cache.NewMemoryCache(cfg.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func newProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "mock":
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
