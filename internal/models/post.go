package models

import "time"

// SourceHomeFeed tags posts collected from the logged-in home feed.
const SourceHomeFeed = "Home Feed"

// Post is a block of feed text persisted by the harvester. Likes is a rough
// engagement estimate, not an exact count.
type Post struct {
	ID        string  `json:"_id,omitempty"`
	Content   string  `json:"content"`
	Likes     int     `json:"likes"`
	Source    string  `json:"source"`
	Timestamp float64 `json:"timestamp"`
}

// Time converts the epoch timestamp to a time.Time.
func (p Post) Time() time.Time {
	return EpochToTime(p.Timestamp)
}

// PostStat is the projection used to build harvest sessions.
type PostStat struct {
	Likes     int
	Timestamp float64
}

// HarvestSession groups posts harvested within the same local clock hour.
type HarvestSession struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	AvgLikes  int     `json:"avg_likes"`
	Timestamp float64 `json:"timestamp"`
}

// EpochSeconds returns t as fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// EpochToTime is the inverse of EpochSeconds.
func EpochToTime(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
