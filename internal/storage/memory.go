package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/google/uuid"
)

// NewMemoryStores returns a fresh set of in-memory repositories.
func NewMemoryStores() Stores {
	return Stores{
		Posts:    NewMemoryPostRepository(),
		History:  NewMemoryHistoryRepository(),
		Activity: NewMemoryActivityRepository(),
	}
}

// MemoryPostRepository implements PostRepository for tests and dry runs.
type MemoryPostRepository struct {
	mu        sync.RWMutex
	posts     []models.Post
	byContent map[string]struct{}
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{byContent: make(map[string]struct{})}
}

func (r *MemoryPostRepository) ExistsByContent(ctx context.Context, content string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byContent[content]
	return ok, nil
}

func (r *MemoryPostRepository) Insert(ctx context.Context, post models.Post) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	r.posts = append(r.posts, post)
	r.byContent[post.Content] = struct{}{}
	return post.ID, nil
}

func (r *MemoryPostRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts), nil
}

func (r *MemoryPostRepository) ListTop(ctx context.Context, limit int) ([]models.Post, error) {
	r.mu.RLock()
	out := append([]models.Post(nil), r.posts...)
	r.mu.RUnlock()

	sortByLikes(out)
	return truncate(out, limit), nil
}

func (r *MemoryPostRepository) ListWindow(ctx context.Context, from, to float64, limit int) ([]models.Post, error) {
	r.mu.RLock()
	var out []models.Post
	for _, p := range r.posts {
		if p.Timestamp >= from && p.Timestamp <= to {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sortByLikes(out)
	return truncate(out, limit), nil
}

func (r *MemoryPostRepository) ListStats(ctx context.Context) ([]models.PostStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]models.PostStat, 0, len(r.posts))
	for _, p := range r.posts {
		stats = append(stats, models.PostStat{Likes: p.Likes, Timestamp: p.Timestamp})
	}
	return stats, nil
}

func sortByLikes(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Likes > posts[j].Likes })
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// MemoryHistoryRepository implements HistoryRepository in memory.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	records []models.GeneratedRecord
}

func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

func (r *MemoryHistoryRepository) Insert(ctx context.Context, record models.GeneratedRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	r.records = append(r.records, record)
	return record.ID, nil
}

func (r *MemoryHistoryRepository) List(ctx context.Context, limit int) ([]models.GeneratedRecord, error) {
	r.mu.RLock()
	out := append([]models.GeneratedRecord(nil), r.records...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return truncate(out, limit), nil
}

func (r *MemoryHistoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

func (r *MemoryHistoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// MemoryActivityRepository implements ActivityRepository in memory.
type MemoryActivityRepository struct {
	mu   sync.RWMutex
	logs []models.ActivityLog
}

func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{}
}

func (r *MemoryActivityRepository) Log(ctx context.Context, log models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *MemoryActivityRepository) List(ctx context.Context, limit int, activityType *models.ActivityType) ([]models.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ActivityLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if activityType != nil && r.logs[i].ActivityType != *activityType {
			continue
		}
		out = append(out, r.logs[i])
	}
	return truncate(out, limit), nil
}
