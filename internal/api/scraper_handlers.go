package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/harvest"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
)

// HarvestStarter starts a background harvest run.
type HarvestStarter interface {
	Start(ctx context.Context) error
}

// ScraperHandler controls the harvester and relays its status.
type ScraperHandler struct {
	runner  HarvestStarter
	tracker *status.Tracker
	// base bounds background runs; request contexts end with the response.
	base   context.Context
	logger *slog.Logger
}

func NewScraperHandler(base context.Context, runner HarvestStarter, tracker *status.Tracker, logger *slog.Logger) *ScraperHandler {
	return &ScraperHandler{
		runner:  runner,
		tracker: tracker,
		base:    base,
		logger:  logger,
	}
}

// TriggerScrape handles POST /trigger-scrape
func (h *ScraperHandler) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.runner.Start(h.base); err != nil {
		if errors.Is(err, harvest.ErrAlreadyRunning) {
			writeJSON(w, h.logger, http.StatusConflict, map[string]string{"status": "already_running"})
			return
		}
		h.logger.Error("failed to start harvest", "error", err)
		http.Error(w, "Failed to start harvest", http.StatusInternalServerError)
		return
	}

	h.logger.Info("harvest triggered", "remote_addr", r.RemoteAddr)
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "started"})
}

// GetStatus handles GET /scraper-status
func (h *ScraperHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Snapshot())
}

type otpRequest struct {
	OTP string `json:"otp"`
}

// SubmitOTP handles POST /submit-otp
func (h *ScraperHandler) SubmitOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	code := strings.TrimSpace(req.OTP)
	if code == "" {
		writeDetail(w, h.logger, http.StatusBadRequest, "otp is required")
		return
	}

	h.tracker.SubmitOTP(code)
	h.logger.Info("verification code received")
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "received"})
}
