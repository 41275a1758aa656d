// Package storage defines the persistence contracts for harvested posts,
// generated content and activity logs, plus an in-memory implementation.
package storage

import (
	"context"
	"errors"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// PostRepository stores harvested posts.
type PostRepository interface {
	// ExistsByContent reports whether a post with exactly this content is stored.
	ExistsByContent(ctx context.Context, content string) (bool, error)

	// Insert stores a post and returns its id.
	Insert(ctx context.Context, post models.Post) (string, error)

	// Count returns the total number of stored posts.
	Count(ctx context.Context) (int, error)

	// ListTop returns the highest-liked posts. A limit of zero means no limit.
	ListTop(ctx context.Context, limit int) ([]models.Post, error)

	// ListWindow returns posts with from <= timestamp <= to, most liked first.
	// A limit of zero means no limit.
	ListWindow(ctx context.Context, from, to float64, limit int) ([]models.Post, error)

	// ListStats returns the likes and timestamp of every post.
	ListStats(ctx context.Context) ([]models.PostStat, error)
}

// HistoryRepository stores generated content.
type HistoryRepository interface {
	Insert(ctx context.Context, record models.GeneratedRecord) (string, error)

	// List returns records newest first. A limit of zero means no limit.
	List(ctx context.Context, limit int) ([]models.GeneratedRecord, error)

	Count(ctx context.Context) (int, error)

	// Delete removes a record, returning ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// ActivityRepository stores activity logs.
type ActivityRepository interface {
	Log(ctx context.Context, log models.ActivityLog) error
	List(ctx context.Context, limit int, activityType *models.ActivityType) ([]models.ActivityLog, error)
}

// Stores bundles the repositories of one backend.
type Stores struct {
	Posts    PostRepository
	History  HistoryRepository
	Activity ActivityRepository

	// Health probes the backend connection. Nil means always healthy.
	Health func(ctx context.Context) error
}

// Ping runs the health probe, if any.
func (s Stores) Ping(ctx context.Context) error {
	if s.Health == nil {
		return nil
	}
	return s.Health(ctx)
}
