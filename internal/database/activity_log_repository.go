package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
)

const maxActivityRows = 1000

// PostgresActivityRepository stores harvest and generation activity in the
// activity_logs table.
type PostgresActivityRepository struct {
	db *sql.DB
}

func NewPostgresActivityRepository(db *sql.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

func (r *PostgresActivityRepository) Log(ctx context.Context, entry models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var details []byte
	if len(entry.Details) > 0 {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, timestamp, activity_type, message, details, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Timestamp, string(entry.ActivityType), entry.Message, details, entry.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// List returns entries newest first. A nil activityType returns every type.
func (r *PostgresActivityRepository) List(ctx context.Context, limit int, activityType *models.ActivityType) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > maxActivityRows {
		limit = maxActivityRows
	}

	var typeFilter sql.NullString
	if activityType != nil {
		typeFilter = sql.NullString{String: string(*activityType), Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, activity_type, message, details, duration_ms
		FROM activity_logs
		WHERE $1::text IS NULL OR activity_type = $1
		ORDER BY timestamp DESC
		LIMIT $2`, typeFilter, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityLog
	for rows.Next() {
		var (
			entry    models.ActivityLog
			details  []byte
			duration sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.ActivityType, &entry.Message, &details, &duration); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("decode activity details: %w", err)
			}
		}
		if duration.Valid {
			ms := int(duration.Int64)
			entry.DurationMs = &ms
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
