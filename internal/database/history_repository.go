package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
	"github.com/google/uuid"
)

// PostgresHistoryRepository stores generated content in generated_history.
type PostgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func (r *PostgresHistoryRepository) Insert(ctx context.Context, record models.GeneratedRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	query := `
		INSERT INTO generated_history (id, mode, topic, tone, content, image_base64, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Mode,
		record.Topic,
		record.Tone,
		record.Content,
		record.Image,
		record.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history record: %w", err)
	}
	return record.ID, nil
}

func (r *PostgresHistoryRepository) List(ctx context.Context, limit int) ([]models.GeneratedRecord, error) {
	query := `
		SELECT id, mode, topic, tone, content, image_base64, timestamp
		FROM generated_history
		ORDER BY timestamp DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	records := []models.GeneratedRecord{}
	for rows.Next() {
		var rec models.GeneratedRecord
		if err := rows.Scan(&rec.ID, &rec.Mode, &rec.Topic, &rec.Tone, &rec.Content, &rec.Image, &rec.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresHistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generated_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

func (r *PostgresHistoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM generated_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
