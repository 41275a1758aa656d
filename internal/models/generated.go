package models

// Generation modes.
const (
	ModeTrend = "trend"
	ModeRemix = "remix"
)

// GeneratedRecord is a persisted generation result.
type GeneratedRecord struct {
	ID        string  `json:"_id,omitempty"`
	Mode      string  `json:"mode"`
	Topic     string  `json:"topic"`
	Tone      string  `json:"tone,omitempty"`
	Content   string  `json:"content"`
	Image     string  `json:"image_base64"`
	Timestamp float64 `json:"timestamp"`
}

// RecentActivity is one entry of the dashboard activity feed.
type RecentActivity struct {
	Action  string  `json:"action"`
	Details string  `json:"details"`
	Time    float64 `json:"time"`
}

// DashboardStats summarises store contents for the dashboard.
type DashboardStats struct {
	TotalScraped   int              `json:"total_scraped"`
	TotalGenerated int              `json:"total_generated"`
	RecentActivity []RecentActivity `json:"recent_activity"`
}
