package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avatarworks/gateway/internal/api"
	"github.com/avatarworks/gateway/internal/config"
	"github.com/avatarworks/gateway/internal/database"
	"github.com/avatarworks/gateway/internal/identity"
	"github.com/avatarworks/gateway/internal/queue"
	"github.com/avatarworks/gateway/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.TTS.APIKey == "" || cfg.TTS.VoiceID == "" {
		slog.Warn("TTS credentials not configured; /tts-ws will refuse connections")
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// Redis is optional: without it the enrichment cache is disabled and
	// résumé extraction jobs cannot be enqueued.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var queueClient *queue.Client
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache and background jobs", "error", err)
		rdb = nil
	} else {
		queueClient = queue.NewClient(cfg.Redis)
		defer queueClient.Close()
	}
	if rdb != nil {
		defer rdb.Close()
	}

	files, err := storage.NewLocalStorage(cfg.Storage.ResumeDir)
	if err != nil {
		slog.Error("failed to prepare resume storage", "error", err)
		os.Exit(1)
	}

	index := identity.NewIndex()
	if err := index.Reload(ctx, identity.NewPgStore(db)); err != nil {
		slog.Error("failed to load identity index", "error", err)
		os.Exit(1)
	}
	slog.Info("identity index loaded", "identities", index.Len())

	router := api.NewRouter(db, rdb, cfg, files, index, queueClient)
	handler := router.Setup()

	// Expired-session sweep; reads also expire lazily.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				if n := router.Sessions().Sweep(); n > 0 {
					slog.Debug("swept expired sessions", "count", n)
				}
			}
		}
	}()
	defer close(sweepDone)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
