// Package main provides the HTTP server for Ganbatte.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ganbatte-hq/ganbatte/internal/config"
	"github.com/ganbatte-hq/ganbatte/internal/db"
	"github.com/ganbatte-hq/ganbatte/internal/deadline"
	"github.com/ganbatte-hq/ganbatte/internal/extract"
	"github.com/ganbatte-hq/ganbatte/internal/geo"
	"github.com/ganbatte-hq/ganbatte/internal/intake"
	"github.com/ganbatte-hq/ganbatte/internal/metrics"
	"github.com/ganbatte-hq/ganbatte/internal/route"
	"github.com/ganbatte-hq/ganbatte/internal/server"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	slog.Info("starting ganbatte-server", "port", cfg.ServerPort, "llm_provider", cfg.LLMProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := dbClient.InitSchema(ctx); err != nil {
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	if *wipeDB || os.Getenv("GANBATTE_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			slog.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}

	model, err := extract.NewModel(ctx, cfg)
	if err != nil {
		slog.Error("failed to create LLM model", "error", err)
		os.Exit(1)
	}
	slog.Info("LLM model ready", "model", model.ModelName())

	geocoder, err := geo.NewGoogleGeocoder(cfg, logger)
	if err != nil {
		slog.Error("failed to create geocoder", "error", err)
		os.Exit(1)
	}
	router, err := route.NewGoogleRouter(cfg, logger)
	if err != nil {
		slog.Error("failed to create routing provider", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()
	engine := extract.NewEngine(model, collector, logger)
	validator := geo.NewValidator(geocoder, logger)
	normalizer := deadline.NewNormalizer(time.Local, logger)
	controller := intake.NewController(engine, validator, normalizer, nil, logger)
	enricher := route.NewEnricher(router, geocoder, collector, logger)

	srv := server.New(cfg, controller, enricher, dbClient, collector, logger)

	go func() {
		for range time.Tick(5 * time.Minute) {
			if n := srv.Sessions().Prune(); n > 0 {
				slog.Info("pruned idle sessions", "count", n)
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("API available", "url", fmt.Sprintf("http://localhost:%s/v1", cfg.ServerPort))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
