package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/google/uuid"
)

// PostgresPostRepository stores harvested posts in viral_posts.
type PostgresPostRepository struct {
	db *sql.DB
}

// NewPostgresPostRepository creates a new post repository.
func NewPostgresPostRepository(db *sql.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) ExistsByContent(ctx context.Context, content string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM viral_posts WHERE md5(content) = md5($1) AND content = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, content).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}
	return exists, nil
}

func (r *PostgresPostRepository) Insert(ctx context.Context, post models.Post) (string, error) {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	query := `
		INSERT INTO viral_posts (id, content, likes, source, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, post.ID, post.Content, post.Likes, post.Source, post.Timestamp); err != nil {
		return "", fmt.Errorf("failed to insert post: %w", err)
	}
	return post.ID, nil
}

func (r *PostgresPostRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM viral_posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *PostgresPostRepository) ListTop(ctx context.Context, limit int) ([]models.Post, error) {
	query := `
		SELECT id, content, likes, source, timestamp
		FROM viral_posts
		ORDER BY likes DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list top posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (r *PostgresPostRepository) ListWindow(ctx context.Context, from, to float64, limit int) ([]models.Post, error) {
	query := `
		SELECT id, content, likes, source, timestamp
		FROM viral_posts
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY likes DESC
	`
	args := []interface{}{from, to}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts in window: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (r *PostgresPostRepository) ListStats(ctx context.Context) ([]models.PostStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT likes, timestamp FROM viral_posts`)
	if err != nil {
		return nil, fmt.Errorf("failed to list post stats: %w", err)
	}
	defer rows.Close()

	stats := []models.PostStat{}
	for rows.Next() {
		var s models.PostStat
		if err := rows.Scan(&s.Likes, &s.Timestamp); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.Likes, &p.Source, &p.Timestamp); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
