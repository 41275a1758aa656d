package harvest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/browser"
)

// ExtractionStrategy turns the current page into candidate post text. The
// page markup changes without notice, so the heuristics live behind this
// interface.
type ExtractionStrategy interface {
	// Anchors returns elements that sit inside a post, such as its action bar.
	Anchors(ctx context.Context, d browser.Driver) ([]browser.Element, error)
	// Resolve returns the raw text of the post containing anchor.
	Resolve(ctx context.Context, anchor browser.Element) (string, error)
	// Clean reduces raw text to post content, reporting false when the
	// result is too short to keep.
	Clean(raw string) (string, bool)
	// Estimate guesses the like count from raw text.
	Estimate(raw string) int
}

// AnchorStrategy locates posts through their Like/Comment controls and climbs
// to the nearest ancestor with enough text.
type AnchorStrategy struct {
	Labels            []string
	ContainerMinChars int
	MinContentChars   int
	CutLabel          string
	MaxPlausibleLikes int
	DefaultLikes      int
}

// DefaultStrategy returns the feed heuristics.
func DefaultStrategy() AnchorStrategy {
	return AnchorStrategy{
		Labels:            []string{"Comment", "Like"},
		ContainerMinChars: 100,
		MinContentChars:   40,
		CutLabel:          "Comment",
		MaxPlausibleLikes: 100_000,
		DefaultLikes:      5,
	}
}

func (s AnchorStrategy) Anchors(ctx context.Context, d browser.Driver) ([]browser.Element, error) {
	return d.Find(ctx, browser.Labels(s.Labels...))
}

func (s AnchorStrategy) Resolve(ctx context.Context, anchor browser.Element) (string, error) {
	container, err := anchor.Closest(ctx, s.ContainerMinChars)
	if err != nil {
		return "", fmt.Errorf("resolve container: %w", err)
	}
	if err := container.ScrollIntoView(ctx); err != nil {
		return "", fmt.Errorf("scroll container: %w", err)
	}
	return container.Text(ctx)
}

func (s AnchorStrategy) Clean(raw string) (string, bool) {
	text := raw
	if s.CutLabel != "" {
		text, _, _ = strings.Cut(raw, s.CutLabel)
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < s.MinContentChars {
		return "", false
	}
	return text, true
}

var digitRun = regexp.MustCompile(`\d+`)

// Estimate returns the largest integer below MaxPlausibleLikes found in raw.
// It picks up comment and repost counts as readily as likes.
func (s AnchorStrategy) Estimate(raw string) int {
	best, found := 0, false
	for _, m := range digitRun.FindAllString(raw, -1) {
		n, err := strconv.Atoi(m)
		if err != nil || n >= s.MaxPlausibleLikes {
			continue
		}
		if !found || n > best {
			best, found = n, true
		}
	}
	if !found {
		return s.DefaultLikes
	}
	return best
}
