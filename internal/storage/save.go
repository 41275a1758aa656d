package storage

import (
	"context"
	"log/slog"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
)

// SaveUnique inserts each post whose exact content is not already stored and
// returns how many were inserted. A failing post is logged and skipped; the
// existence check and the insert are not atomic.
func SaveUnique(ctx context.Context, repo PostRepository, posts []models.Post, logger *slog.Logger) int {
	inserted := 0
	for _, post := range posts {
		exists, err := repo.ExistsByContent(ctx, post.Content)
		if err != nil {
			logger.Warn("post existence check failed", "error", err)
			continue
		}
		if exists {
			continue
		}

		if _, err := repo.Insert(ctx, post); err != nil {
			logger.Warn("failed to store post", "error", err)
			continue
		}
		inserted++
	}
	return inserted
}
