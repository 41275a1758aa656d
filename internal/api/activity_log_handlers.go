package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

type ActivityLogHandlers struct {
	repo   storage.ActivityRepository
	logger *slog.Logger
}

func NewActivityLogHandlers(repo storage.ActivityRepository, logger *slog.Logger) *ActivityLogHandlers {
	return &ActivityLogHandlers{
		repo:   repo,
		logger: logger,
	}
}

// ListActivities handles GET /activity-logs
func (h *ActivityLogHandlers) ListActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 100
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	var activityType *models.ActivityType
	if raw := r.URL.Query().Get("activity_type"); raw != "" {
		t := models.ActivityType(raw)
		activityType = &t
	}

	logs, err := h.repo.List(r.Context(), limit, activityType)
	if err != nil {
		h.logger.Error("failed to list activity logs", "error", err)
		http.Error(w, "Failed to retrieve activity logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}
