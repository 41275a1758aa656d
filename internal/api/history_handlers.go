package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

type HistoryHandler struct {
	repo   storage.HistoryRepository
	logger *slog.Logger
}

func NewHistoryHandler(repo storage.HistoryRepository, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, logger: logger}
}

// ListHistory handles GET /history
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.repo.List(r.Context(), 0)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		http.Error(w, "Failed to retrieve history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.GeneratedRecord{}
	}
	writeJSON(w, h.logger, http.StatusOK, records)
}

// DeleteHistory handles DELETE /history/{id}
func (h *HistoryHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/history/"), "/")
	if id == "" {
		writeDetail(w, h.logger, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(w, h.logger, http.StatusNotFound, "Post not found")
			return
		}
		h.logger.Error("failed to delete history record", "id", id, "error", err)
		http.Error(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}

	h.logger.Info("history record deleted", "id", id)
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "success", "message": "Post deleted"})
}
