package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/browser"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/metrics"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

// ErrAlreadyRunning is returned when a harvest is requested while one is active.
var ErrAlreadyRunning = errors.New("harvest already running")

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Credentials Credentials
	// SkipLogin is set when replaying saved pages.
	SkipLogin bool
	Login     LoginConfig
	Harvest   Config
}

// NewRunnerConfig maps scraper settings onto runner settings.
func NewRunnerConfig(cfg config.ScraperConfig, replay bool) RunnerConfig {
	login := DefaultLoginConfig()
	if cfg.LoginURL != "" {
		login.URL = cfg.LoginURL
	}

	h := DefaultConfig()
	h.Target = cfg.TargetPosts
	if cfg.FeedURL != "" {
		h.FeedURL = cfg.FeedURL
	}
	if cfg.MaxRefreshes > 0 {
		h.MaxRefreshes = cfg.MaxRefreshes
	}
	if cfg.MaxScrolls > 0 {
		h.MaxScrolls = cfg.MaxScrolls
	}
	if replay {
		h.FeedSettle = 0
		h.FirstScroll = 0
		h.SecondScroll = 0
		h.RefreshSettle = 0
	}

	return RunnerConfig{
		Credentials: Credentials{Email: cfg.Email, Password: cfg.Password},
		SkipLogin:   replay,
		Login:       login,
		Harvest:     h,
	}
}

// Runner owns the lifecycle of a harvest: one at a time, always tearing the
// browser down, always leaving a terminal status behind.
type Runner struct {
	launcher browser.Launcher
	posts    storage.PostRepository
	activity storage.ActivityRepository
	tracker  *status.Tracker
	metrics  *metrics.Pipeline
	logger   *slog.Logger
	config   RunnerConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner creates a Runner. activity and m may be nil.
func NewRunner(
	launcher browser.Launcher,
	posts storage.PostRepository,
	activity storage.ActivityRepository,
	tracker *status.Tracker,
	m *metrics.Pipeline,
	logger *slog.Logger,
	config RunnerConfig,
) *Runner {
	return &Runner{
		launcher: launcher,
		posts:    posts,
		activity: activity,
		tracker:  tracker,
		metrics:  m,
		logger:   logger,
		config:   config,
	}
}

// Start launches a harvest in the background and returns once the tracker
// shows RUNNING. parent bounds the run; it should outlive the caller's request.
func (r *Runner) Start(parent context.Context) error {
	ctx, err := r.claim(parent)
	if err != nil {
		return err
	}

	go func() {
		defer r.release()
		if _, err := r.execute(ctx); err != nil {
			r.logger.Error("background harvest failed", "error", err)
		}
	}()
	return nil
}

// Run harvests in the foreground.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	runCtx, err := r.claim(ctx)
	if err != nil {
		return Result{}, err
	}
	defer r.release()
	return r.execute(runCtx)
}

// Running reports whether a harvest is in progress.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop cancels an in-flight harvest and waits for it to finish tearing down.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) claim(parent context.Context) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(parent)
	r.running = true
	r.cancel = cancel
	r.done = make(chan struct{})

	r.tracker.Reset()
	r.tracker.Set(status.Running, "Starting browser")
	return ctx, nil
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()
	close(r.done)
	r.running = false
	r.cancel = nil
}

func (r *Runner) execute(ctx context.Context) (Result, error) {
	started := time.Now()

	res, err := r.harvest(ctx)
	if err != nil {
		res.Outcome = OutcomeError
		if errors.Is(err, context.Canceled) {
			res.Outcome = OutcomeCancelled
			r.tracker.Set(status.Error, "Harvest cancelled")
		} else if r.tracker.Phase() != status.Error {
			r.tracker.Set(status.Error, fmt.Sprintf("Error: %v", err))
		}
	}

	r.metrics.HarvestFinished(res.Outcome)
	r.record(res, err, time.Since(started))
	return res, err
}

func (r *Runner) harvest(ctx context.Context) (Result, error) {
	driver, err := r.launcher.Launch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			r.logger.Warn("failed to close browser", "error", err)
		}
	}()

	if !r.config.SkipLogin {
		auth := NewAuthenticator(driver, r.tracker, r.logger, r.config.Login)
		if err := auth.Login(ctx, r.config.Credentials); err != nil {
			return Result{}, err
		}
	}

	h := NewHarvester(driver, r.posts, r.tracker, r.logger, r.config.Harvest).WithMetrics(r.metrics)
	return h.Run(ctx)
}

// record writes an activity log entry. Failures are only logged.
func (r *Runner) record(res Result, runErr error, elapsed time.Duration) {
	if r.activity == nil {
		return
	}

	durationMs := int(elapsed.Milliseconds())
	entry := models.ActivityLog{
		Timestamp:    time.Now(),
		ActivityType: models.ActivityTypeHarvest,
		Message:      fmt.Sprintf("Harvest %s: %d posts collected", res.Outcome, res.Collected),
		Details: map[string]interface{}{
			"collected": res.Collected,
			"scans":     res.Scans,
			"refreshes": res.Refreshes,
			"outcome":   res.Outcome,
		},
		DurationMs: &durationMs,
	}
	if runErr != nil {
		entry.Details["error"] = runErr.Error()
	}

	// The run context may already be cancelled; the log entry should still land.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.activity.Log(ctx, entry); err != nil {
		r.logger.Warn("failed to record harvest activity", "error", err)
	}
}
