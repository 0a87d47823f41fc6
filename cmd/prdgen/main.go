package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aetherhq/prdgen/internal/llm"
	"github.com/aetherhq/prdgen/internal/logging"
	"github.com/aetherhq/prdgen/internal/pipeline"
	"github.com/aetherhq/prdgen/internal/server"
	"github.com/aetherhq/prdgen/internal/state"
	"github.com/aetherhq/prdgen/internal/streaming"
)

func main() {
	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("prdgen exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(dbDir(cfg.DBPath), 0o755); err != nil {
		return err
	}

	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	store, err := state.NewLibSQLStore(cfg.DBPath, retention)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	sweeper, err := state.NewSweeper(store, cfg.SweepCron, logger)
	if err != nil {
		return err
	}
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	hub := streaming.NewMemoryHub()

	srv, err := server.New(server.Deps{
		Store: store,
		Hub:   hub,
		LLM: llm.Settings{
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			APIKey:   os.Getenv("OPENAI_API_KEY"),
			BaseURL:  cfg.LLMBaseURL,
		},
		RunnerOpts: pipeline.Options{
			MaxRevisions: cfg.MaxRevisions,
			LoopDelay:    duration(cfg.LoopDelay, time.Second),
			CallTimeout:  duration(cfg.LLMTimeout, 2*time.Minute),
			Logger:       logger,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("prdgen listening", slog.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	inner := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}

func dbDir(dbPath string) string {
	return filepath.Dir(strings.TrimPrefix(dbPath, "file:"))
}
