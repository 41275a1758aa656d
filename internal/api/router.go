package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

// Dependencies are the collaborators the HTTP routes need.
type Dependencies struct {
	// Base bounds background harvest runs started by requests.
	Base      context.Context
	Runner    HarvestStarter
	Tracker   *status.Tracker
	Stores    storage.Stores
	Generator Generator
	Logger    *slog.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, deps Dependencies) {
	logger := deps.Logger
	base := deps.Base
	if base == nil {
		base = context.Background()
	}

	scraperHandler := NewScraperHandler(base, deps.Runner, deps.Tracker, logger)
	analyticsHandler := NewAnalyticsHandler(deps.Stores.Posts, deps.Stores.History, logger)
	generatorHandler := NewGeneratorHandler(deps.Generator, logger)
	historyHandler := NewHistoryHandler(deps.Stores.History, logger)
	activityHandler := NewActivityLogHandlers(deps.Stores.Activity, logger)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Stores.Ping(r.Context()); err != nil {
			logger.Warn("store health check failed", "error", err)
			writeJSON(w, logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "online"})
	})

	// Harvester control
	mux.HandleFunc("/trigger-scrape", scraperHandler.TriggerScrape)
	mux.HandleFunc("/scraper-status", scraperHandler.GetStatus)
	mux.HandleFunc("/submit-otp", scraperHandler.SubmitOTP)

	// Harvested posts
	mux.HandleFunc("/analytics/stats", analyticsHandler.GetStats)
	mux.HandleFunc("/sessions", analyticsHandler.ListSessions)
	mux.HandleFunc("/posts-by-session", analyticsHandler.PostsBySession)

	// Generation and history
	mux.HandleFunc("/generate", generatorHandler.Generate)
	mux.HandleFunc("/history", historyHandler.ListHistory)
	mux.HandleFunc("/history/", historyHandler.DeleteHistory)

	mux.HandleFunc("/activity-logs", activityHandler.ListActivities)
}
