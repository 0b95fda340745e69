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
	"strings"
	"syscall"
	"time"

	apiclient "github.com/driftlabs/driftsync/internal/client/api"
	"github.com/driftlabs/driftsync/internal/client/cli"
	"github.com/driftlabs/driftsync/internal/client/connectivity"
	"github.com/driftlabs/driftsync/internal/client/iocli"
	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/client/storage/boltdb"
	clientsync "github.com/driftlabs/driftsync/internal/client/sync"
	"github.com/driftlabs/driftsync/internal/crdt"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "driftsync-client.db", "Path to local database")
	watch := flag.Bool("watch", false, "Keep running and sync continuously")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if !*watch && len(args) == 0 {
		fmt.Fprint(os.Stderr, cli.Usage())
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	apiClient := apiclient.NewClient(*serverURL, 30*time.Second)
	engine := crdt.NewAutomergeEngine()
	coordinator := clientsync.NewCoordinator(
		apiClient, store, store, store, store, engine, clientsync.DefaultConfig(), logger)

	if *watch {
		if err := runWatch(ctx, *serverURL, apiClient, coordinator, store, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	commands := cli.New(iocli.NewStdio(), apiClient, coordinator, store, store, engine)
	if err := commands.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runWatch runs the connectivity monitor until interrupted, draining on
// reconnect, on schedule and on server wake pushes.
func runWatch(
	ctx context.Context,
	serverURL string,
	apiClient apiclient.ClientAPI,
	coordinator *clientsync.Coordinator,
	sessions storage.SessionStorage,
	logger *slog.Logger,
) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return fmt.Errorf("not authenticated; run 'driftsync login' first")
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Valid(time.Now()) {
		return fmt.Errorf("session expired; run 'driftsync login' again")
	}

	cfg := connectivity.DefaultConfig()
	cfg.WakeURL = wakeURL(serverURL)
	cfg.WakeHeader = http.Header{"Authorization": []string{"Bearer " + session.AccessToken}}

	fmt.Println("Watching for changes; Ctrl-C to stop.")
	monitor := connectivity.NewMonitor(apiClient, coordinator, cfg, logger)
	return monitor.Run(ctx)
}

func wakeURL(serverURL string) string {
	ws := strings.Replace(serverURL, "http://", "ws://", 1)
	ws = strings.Replace(ws, "https://", "wss://", 1)
	return ws + "/api/v1/wake"
}

func printVersion() {
	fmt.Printf("driftsync client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
