// Package harvest drives a logged-in browser session through the home feed,
// extracting and storing posts while reporting progress to a status tracker.
package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/browser"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/metrics"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

// Outcomes reported in Result and metrics.
const (
	OutcomeCompleted = "completed"
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Config holds the loop parameters.
type Config struct {
	Target  int
	FeedURL string
	// StallLimit is the number of consecutive empty scans tolerated before
	// the page is refreshed.
	StallLimit int
	// MaxRefreshes bounds consecutive stall refreshes that add no posts.
	MaxRefreshes int
	// MaxScrolls bounds the total number of scan iterations.
	MaxScrolls int

	BodyTimeout   time.Duration
	FeedSettle    time.Duration
	FirstScroll   time.Duration
	SecondScroll  time.Duration
	RefreshSettle time.Duration
}

// DefaultConfig returns the feed loop defaults.
func DefaultConfig() Config {
	return Config{
		Target:        50,
		FeedURL:       "https://www.linkedin.com/feed/",
		StallLimit:    6,
		MaxRefreshes:  5,
		MaxScrolls:    500,
		BodyTimeout:   20 * time.Second,
		FeedSettle:    5 * time.Second,
		FirstScroll:   1500 * time.Millisecond,
		SecondScroll:  2 * time.Second,
		RefreshSettle: 5 * time.Second,
	}
}

// Result summarises one harvest loop.
type Result struct {
	Collected int
	Scans     int
	Refreshes int
	Outcome   string
}

// Harvester runs the scan/save/scroll loop over an authenticated session.
type Harvester struct {
	driver   browser.Driver
	posts    storage.PostRepository
	tracker  *status.Tracker
	strategy ExtractionStrategy
	logger   *slog.Logger
	metrics  *metrics.Pipeline
	config   Config

	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// NewHarvester creates a harvester using the default extraction strategy.
func NewHarvester(
	driver browser.Driver,
	posts storage.PostRepository,
	tracker *status.Tracker,
	logger *slog.Logger,
	config Config,
) *Harvester {
	return &Harvester{
		driver:   driver,
		posts:    posts,
		tracker:  tracker,
		strategy: DefaultStrategy(),
		logger:   logger,
		config:   config,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// WithStrategy replaces the extraction heuristics.
func (h *Harvester) WithStrategy(s ExtractionStrategy) *Harvester {
	h.strategy = s
	return h
}

// WithMetrics attaches pipeline metrics.
func (h *Harvester) WithMetrics(m *metrics.Pipeline) *Harvester {
	h.metrics = m
	return h
}

// Run opens the feed and harvests until the target is reached, the feed
// stops yielding posts, or ctx is cancelled.
func (h *Harvester) Run(ctx context.Context) (Result, error) {
	res := Result{}

	h.tracker.Set(status.Running, "Opening feed")
	if err := h.driver.Navigate(ctx, h.config.FeedURL); err != nil {
		return res, err
	}
	if _, err := h.driver.WaitFor(ctx, browser.Query("body"), h.config.BodyTimeout); err != nil {
		return res, fmt.Errorf("feed did not load: %w", err)
	}
	if err := h.sleep(ctx, h.config.FeedSettle); err != nil {
		return res, err
	}

	seen := seenSet{}
	stall := 0
	idleRefreshes := 0

	for res.Collected < h.config.Target {
		if res.Scans >= h.config.MaxScrolls {
			return h.exhausted(res), nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Scans++
		h.tracker.Set(status.Running, fmt.Sprintf("Scanning... (%d/%d)", res.Collected, h.config.Target))

		batch := h.scan(ctx, seen)
		if len(batch) > 0 {
			inserted := storage.SaveUnique(ctx, h.posts, batch, h.logger)
			res.Collected += inserted
			stall = 0
			if inserted > 0 {
				idleRefreshes = 0
			}
			h.metrics.PostsSaved(inserted)
			h.tracker.Set(status.Running, fmt.Sprintf("Saved %d new posts. Total: %d", inserted, res.Collected))
			h.logger.Info("batch saved", "candidates", len(batch), "inserted", inserted, "total", res.Collected)
		} else {
			stall++
		}

		if res.Collected >= h.config.Target {
			break
		}

		if err := h.scroll(ctx); err != nil {
			return res, err
		}

		if stall > h.config.StallLimit {
			if idleRefreshes >= h.config.MaxRefreshes {
				return h.exhausted(res), nil
			}
			if err := h.refresh(ctx); err != nil {
				return res, err
			}
			res.Refreshes++
			idleRefreshes++
			stall = 0
		}
	}

	res.Outcome = OutcomeCompleted
	h.tracker.Set(status.Completed, fmt.Sprintf("Harvest complete! Collected %d posts.", res.Collected))
	return res, nil
}

// scan extracts every not-yet-seen post currently on the page. Failures on
// individual anchors are skipped.
func (h *Harvester) scan(ctx context.Context, seen seenSet) []models.Post {
	anchors, err := h.strategy.Anchors(ctx, h.driver)
	if err != nil {
		h.logger.Warn("anchor lookup failed", "error", err)
		return nil
	}

	var batch []models.Post
	for _, anchor := range anchors {
		if ctx.Err() != nil {
			return batch
		}

		raw, err := h.strategy.Resolve(ctx, anchor)
		if err != nil {
			h.logger.Debug("skipping anchor", "error", err)
			continue
		}

		content, ok := h.strategy.Clean(raw)
		if !ok || !seen.add(content) {
			continue
		}

		batch = append(batch, models.Post{
			Content:   content,
			Likes:     h.strategy.Estimate(raw),
			Source:    models.SourceHomeFeed,
			Timestamp: models.EpochSeconds(h.now()),
		})
	}
	return batch
}

func (h *Harvester) scroll(ctx context.Context) error {
	if err := h.driver.ScrollPageDown(ctx); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	if err := h.sleep(ctx, h.config.FirstScroll); err != nil {
		return err
	}
	if err := h.driver.ScrollPageDown(ctx); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return h.sleep(ctx, h.config.SecondScroll)
}

func (h *Harvester) refresh(ctx context.Context) error {
	h.tracker.Set(status.Running, "Stuck. Refreshing page...")
	h.logger.Info("feed stalled, refreshing")
	h.metrics.StallRefresh()

	if err := h.driver.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if _, err := h.driver.WaitFor(ctx, browser.Query("body"), h.config.BodyTimeout); err != nil {
		return fmt.Errorf("feed did not reload: %w", err)
	}
	return h.sleep(ctx, h.config.RefreshSettle)
}

func (h *Harvester) exhausted(res Result) Result {
	res.Outcome = OutcomeExhausted
	h.tracker.Set(status.Completed, fmt.Sprintf("Feed exhausted. Collected %d posts.", res.Collected))
	h.logger.Warn("feed exhausted before target", "collected", res.Collected, "target", h.config.Target)
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
