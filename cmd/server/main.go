package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/api"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/browser"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/database"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/generation"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/harvest"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/logging"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/metrics"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/server"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting buzzbuilder", "store", cfg.Store.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, closeStores, err := database.OpenStores(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStores(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	collector, err := metrics.NewHTTPCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}
	pipeline, err := metrics.NewPipeline(collector.Registry())
	if err != nil {
		logger.Error("failed to init pipeline metrics", "error", err)
		os.Exit(1)
	}

	launcher, replay, err := browser.NewLauncher(cfg.Scraper, logger)
	if err != nil {
		logger.Error("failed to configure browser", "error", err)
		os.Exit(1)
	}
	if !replay && cfg.Scraper.Email == "" {
		logger.Warn("LINKEDIN_EMAIL not set, harvest runs will fail at login")
	}

	tracker := status.NewTracker()
	runner := harvest.NewRunner(launcher, stores.Posts, stores.Activity, tracker, pipeline, logger, harvest.NewRunnerConfig(cfg.Scraper, replay))

	text, images := generation.NewProviders(cfg.Generation, logger)
	generator := generation.NewService(text, images, stores, pipeline, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	api.SetupRoutes(mux, api.Dependencies{
		Base:      ctx,
		Runner:    runner,
		Tracker:   tracker,
		Stores:    stores,
		Generator: generator,
		Logger:    logger,
	})

	handler := server.CORSMiddleware(collector.InstrumentHandler(mux))
	srv := server.New(cfg.Server, logger, handler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stopCancel()
	if err := runner.Stop(stopCtx); err != nil {
		logger.Error("harvest did not stop cleanly", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
