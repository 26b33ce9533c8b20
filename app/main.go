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

	"github.com/jthora/feedgate/app/api"
	"github.com/jthora/feedgate/app/cfg"
	"github.com/jthora/feedgate/app/database"
	"github.com/jthora/feedgate/app/feed"
	"github.com/jthora/feedgate/app/fetch"
	"github.com/jthora/feedgate/app/tasks"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting FeedGate server", "version", c.Version)

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", c.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", c.DBPath, "migration_version", version, "dirty", dirty)

	sourceCache := feed.NewSourceCache(c.SourcesDir)
	if err := sourceCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", c.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "dir", c.SourcesDir, "count", sourceCache.GetConfigCount())

	sourceRepo := database.NewSourceRepository(db)
	recordRepo := database.NewRecordRepository(db)

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	fetcher := fetch.NewFetcher(httpClient, c.ProxyURL, c.ProxyFallbackURL, c.UserAgent,
		time.Duration(c.FetchTimeout)*time.Second)
	pipeline := feed.NewPipeline(fetcher, time.Now)
	filterer := feed.NewFilterer()
	contentExtractor := feed.NewContentExtractor()

	slog.Info("Starting background scheduler", "workers", c.WorkerCount, "interval", c.SchedulerInterval)
	scheduler := tasks.NewScheduler(sourceCache, sourceRepo, recordRepo, httpClient, pipeline, filterer, contentExtractor)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(sourceCache, sourceRepo, recordRepo, filterer, scheduler, pipeline, fetcher)
	server := api.NewServer(handler, c.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port)
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

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
