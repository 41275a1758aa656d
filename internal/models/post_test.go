package models

import (
	"math"
	"testing"
	"time"
)

func TestEpochRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 13, 45, 30, 250_000_000, time.UTC)

	ts := EpochSeconds(now)
	if math.Abs(ts-float64(now.Unix())-0.25) > 1e-6 {
		t.Fatalf("unexpected epoch seconds %f", ts)
	}

	back := EpochToTime(ts)
	if diff := back.Sub(now); diff > time.Microsecond || diff < -time.Microsecond {
		t.Fatalf("round trip drifted by %v", diff)
	}
}

func TestPostTime(t *testing.T) {
	p := Post{Timestamp: 1714571130}
	if got := p.Time().UTC().Hour(); got != 13 {
		t.Fatalf("expected hour 13, got %d", got)
	}
}
