package models

import "time"

// ActivityType represents the type of activity being logged.
type ActivityType string

const (
	ActivityTypeHarvest  ActivityType = "harvest"
	ActivityTypeGenerate ActivityType = "generate"
)

// ActivityLog represents a logged activity in the system.
type ActivityLog struct {
	ID           string                 `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	ActivityType ActivityType           `json:"activity_type"`
	Message      string                 `json:"message"`
	Details      map[string]interface{} `json:"details,omitempty"`
	DurationMs   *int                   `json:"duration_ms,omitempty"`
}
