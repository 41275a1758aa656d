package storage

import (
	"sort"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
)

// SessionLabelLayout formats the local clock hour that names a session.
const SessionLabelLayout = "2006-01-02 15:00"

// GroupSessions buckets posts by the local clock hour of their timestamp.
// Sessions are returned newest label first; each carries the earliest
// timestamp of its bucket so it can be used to query the session's posts.
func GroupSessions(stats []models.PostStat, loc *time.Location) []models.HarvestSession {
	if loc == nil {
		loc = time.Local
	}

	type bucket struct {
		count    int
		likes    int
		earliest float64
	}
	buckets := make(map[string]*bucket)

	for _, s := range stats {
		label := models.EpochToTime(s.Timestamp).In(loc).Format(SessionLabelLayout)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{earliest: s.Timestamp}
			buckets[label] = b
		}
		b.count++
		b.likes += s.Likes
		if s.Timestamp < b.earliest {
			b.earliest = s.Timestamp
		}
	}

	sessions := make([]models.HarvestSession, 0, len(buckets))
	for label, b := range buckets {
		sessions = append(sessions, models.HarvestSession{
			Label:     label,
			Count:     b.count,
			AvgLikes:  b.likes / b.count,
			Timestamp: b.earliest,
		})
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Label > sessions[j].Label })
	return sessions
}

// SessionWindow returns the timestamp range used to select a session's posts:
// half an hour before the session timestamp to an hour after.
func SessionWindow(ts float64) (from, to float64) {
	return ts - 1800, ts + 3600
}
