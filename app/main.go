package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrismessina/raycast-store-updates/app/api"
	"github.com/chrismessina/raycast-store-updates/app/catalog"
	"github.com/chrismessina/raycast-store-updates/app/cfg"
	"github.com/chrismessina/raycast-store-updates/app/database"
	"github.com/chrismessina/raycast-store-updates/app/feed"
	"github.com/chrismessina/raycast-store-updates/app/github"
	"github.com/chrismessina/raycast-store-updates/app/metadata"
	"github.com/chrismessina/raycast-store-updates/app/refresh"
	"github.com/chrismessina/raycast-store-updates/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Store Updates server", "version", appCfg.Version)

	source, err := catalog.LoadSource(appCfg.SourceFile)
	if err != nil {
		slog.Error("Failed to load catalog source descriptor", "error", err)
		os.Exit(1)
	}
	slog.Info("Tracking catalog", "repo", source.Repo, "feed_url", source.FeedURL)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	kvRepo := database.NewKVRepository(db)
	eventRepo := database.NewEventRepository(db)

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 5,
		},
	}

	feedClient := feed.NewClient(source.FeedURL, appCfg.UserAgent, httpClient)
	githubClient := github.NewClient(source.Repo, appCfg.GitHubToken, appCfg.UserAgent, httpClient)
	metadataFetcher := metadata.NewFetcher(source, appCfg.UserAgent, httpClient)
	classifier := catalog.NewClassifier(source, githubClient, metadataFetcher)
	gate := refresh.NewGate(kvRepo)

	scheduler := tasks.NewScheduler(feedClient, githubClient, classifier, eventRepo, gate)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)

	handler := api.NewHandler(source, eventRepo, kvRepo, gate, scheduler, metadataFetcher)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
