package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftlabs/driftsync/internal/crdt"
	"github.com/driftlabs/driftsync/internal/server/handlers"
	"github.com/driftlabs/driftsync/internal/server/jwt"
	"github.com/driftlabs/driftsync/internal/server/middleware"
	"github.com/driftlabs/driftsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "driftsync-server.db", "Path to SQLite database")
	jwtSecret := flag.String("jwt-secret", "", "JWT signing secret (or DRIFTSYNC_JWT_SECRET)")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Access token lifetime")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := newLogger(*logLevel)

	secret := *jwtSecret
	if secret == "" {
		secret = os.Getenv("DRIFTSYNC_JWT_SECRET")
	}
	if secret == "" {
		logger.Error("no JWT secret configured, set -jwt-secret or DRIFTSYNC_JWT_SECRET")
		os.Exit(1)
	}

	if err := run(*addr, *dbPath, secret, *tokenTTL, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, dbPath, secret string, tokenTTL time.Duration, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	tokens := jwt.NewService(secret, tokenTTL)
	engine := crdt.NewAutomergeEngine()
	hub := handlers.NewWakeHub(logger)

	authHandler := handlers.NewAuthHandler(logger, store, tokens)
	syncHandler := handlers.NewSyncHandler(logger, store, engine, hub)
	docsHandler := handlers.NewDocumentsHandler(logger, store, store)
	projHandler := handlers.NewProjectionsHandler(logger, store, store)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	requireAuth := middleware.AuthMiddleware(logger, tokens)
	loginLimit := middleware.RateLimitMiddleware(10, time.Minute, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.Handle("POST /api/v1/auth/register", loginLimit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/v1/sync", requireAuth(http.HandlerFunc(syncHandler.HandleSync)))
	mux.Handle("POST /api/v1/sync/batch", requireAuth(http.HandlerFunc(syncHandler.HandleBatch)))
	mux.Handle("GET /api/v1/documents", requireAuth(http.HandlerFunc(docsHandler.HandleList)))
	mux.Handle("GET /api/v1/documents/{id}", requireAuth(http.HandlerFunc(docsHandler.HandleGet)))
	mux.Handle("DELETE /api/v1/documents/{id}", requireAuth(http.HandlerFunc(docsHandler.HandleDelete)))
	mux.Handle("PUT /api/v1/projections/{id}", requireAuth(http.HandlerFunc(projHandler.HandlePut)))
	mux.Handle("DELETE /api/v1/projections/{id}", requireAuth(http.HandlerFunc(projHandler.HandleDelete)))
	mux.Handle("GET /api/v1/wake", requireAuth(http.HandlerFunc(hub.HandleWake)))

	handler := middleware.RecoveryMiddleware(logger)(
		middleware.LoggingWithSkip(logger, []string{"/healthz"})(mux))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "version", Version)
		errC <- server.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("driftsync server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
