package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-checkers/internal/config"
	"github.com/park285/cheese-checkers/internal/httpapi"
	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/internal/obslog"
	"github.com/park285/cheese-checkers/internal/render"
	"github.com/park285/cheese-checkers/internal/session"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := obslog.Init(obslog.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Console: cfg.Log.Console,
		File:    cfg.Log.File,
		Caller:  cfg.Log.Caller,
	}); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	results := openResults(cfg.DatabaseURL)
	defer func() { _ = results.Close() }()

	mgr, err := session.NewManager(cfg.RedisURL,
		session.WithTTL(time.Duration(cfg.GameTTLSec)*time.Second),
		session.WithResultStore(results),
	)
	if err != nil {
		logger.Fatal("session_manager_init_error", zap.Error(err))
	}
	defer func() { _ = mgr.Close() }()

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("message_catalog_init_error", zap.String("dir", cfg.MessagesDir), zap.Error(err))
	}

	handler := httpapi.NewHandler(mgr, results, render.New(render.Config{SquareSize: cfg.SquareSize}), catalog)
	srv := httpapi.NewServer(handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listen", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("http_serve_error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(ctx); err != nil {
		logger.Warn("http_shutdown_error", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}

// openResults prefers Postgres and falls back to memory when no database is configured or reachable.
func openResults(databaseURL string) session.ResultStore {
	if databaseURL == "" {
		obslog.L().Info("result_store", zap.String("kind", "memory"))
		return session.NewMemoryResults()
	}
	repo, err := session.NewPostgresResults(databaseURL)
	if err != nil {
		obslog.L().Warn("result_store_postgres_unavailable", zap.Error(err))
		return session.NewMemoryResults()
	}
	obslog.L().Info("result_store", zap.String("kind", "postgres"))
	return repo
}
