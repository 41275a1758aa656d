package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

const recentActivityLimit = 5

// AnalyticsHandler serves dashboard figures and harvested posts.
type AnalyticsHandler struct {
	posts   storage.PostRepository
	history storage.HistoryRepository
	loc     *time.Location
	logger  *slog.Logger
}

func NewAnalyticsHandler(posts storage.PostRepository, history storage.HistoryRepository, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		posts:   posts,
		history: history,
		loc:     time.Local,
		logger:  logger,
	}
}

// GetStats handles GET /analytics/stats
func (h *AnalyticsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		stats  models.DashboardStats
		recent []models.GeneratedRecord
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		n, err := h.posts.Count(ctx)
		stats.TotalScraped = n
		return err
	})
	g.Go(func() error {
		n, err := h.history.Count(ctx)
		stats.TotalGenerated = n
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = h.history.List(ctx, recentActivityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("failed to load dashboard stats", "error", err)
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}

	stats.RecentActivity = make([]models.RecentActivity, 0, len(recent))
	for _, rec := range recent {
		details := rec.Topic
		if details == "" {
			details = "Untitled Topic"
		}
		stats.RecentActivity = append(stats.RecentActivity, models.RecentActivity{
			Action:  "Generated Post",
			Details: details,
			Time:    rec.Timestamp,
		})
	}

	writeJSON(w, h.logger, http.StatusOK, stats)
}

// ListSessions handles GET /sessions
func (h *AnalyticsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.posts.ListStats(r.Context())
	if err != nil {
		h.logger.Error("failed to load post stats", "error", err)
		http.Error(w, "Failed to load sessions", http.StatusInternalServerError)
		return
	}

	sessions := storage.GroupSessions(stats, h.loc)
	if sessions == nil {
		sessions = []models.HarvestSession{}
	}
	writeJSON(w, h.logger, http.StatusOK, sessions)
}

// PostsBySession handles GET /posts-by-session?timestamp=<epoch seconds>
func (h *AnalyticsHandler) PostsBySession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ts, err := strconv.ParseFloat(r.URL.Query().Get("timestamp"), 64)
	if err != nil {
		writeDetail(w, h.logger, http.StatusBadRequest, "timestamp must be a number")
		return
	}

	from, to := storage.SessionWindow(ts)
	posts, err := h.posts.ListWindow(r.Context(), from, to, 0)
	if err != nil {
		h.logger.Error("failed to load session posts", "error", err, "timestamp", ts)
		http.Error(w, "Failed to load posts", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, h.logger, http.StatusOK, posts)
}
