// Command harvest runs the feed harvester or the post generator once from the
// terminal, without the HTTP API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/browser"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/database"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/generation"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/harvest"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/logging"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/status"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		target   int
		headless bool
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest posts from the LinkedIn home feed",
		Long: `Logs in to LinkedIn, scrolls the home feed and stores new posts.

When LinkedIn asks for a verification code, type it on stdin.
With --snapshot, saved HTML pages are replayed instead of driving Chrome.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarvest(cmd, target, headless, snapshot)
		},
	}

	cmd.Flags().IntVar(&target, "target", 0, "Number of posts to collect (default from SCRAPER_TARGET_POSTS)")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run Chrome without a window")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Replay saved feed pages (directory or comma-separated files)")

	cmd.AddCommand(generateCmd())
	return cmd
}

func generateCmd() *cobra.Command {
	var req generation.Request

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one post from the stored posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, req)
		},
	}

	cmd.Flags().StringVar(&req.Mode, "mode", models.ModeTrend, "Generation mode (trend, remix)")
	cmd.Flags().StringVar(&req.Topic, "topic", "", "Topic to write about")
	cmd.Flags().StringVar(&req.Tone, "tone", generation.DefaultTone, "Tone of voice")
	cmd.Flags().Float64Var(&req.SessionTimestamp, "session", 0, "Harvest session timestamp to draw examples from")
	cmd.Flags().StringVar(&req.ReferenceCaption, "caption", "", "Reference caption for remix mode")
	return cmd
}

func setup() (config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	// Logs go to stderr so stdout stays readable.
	logger, err := logging.NewWithWriter(cfg.Logging, os.Stderr)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func runHarvest(cmd *cobra.Command, target int, headless bool, snapshot string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if target > 0 {
		cfg.Scraper.TargetPosts = target
	}
	if cmd.Flags().Changed("headless") {
		cfg.Scraper.Headless = headless
	}
	if snapshot != "" {
		cfg.Scraper.SnapshotPath = snapshot
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := database.OpenStores(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	launcher, replay, err := browser.NewLauncher(cfg.Scraper, logger)
	if err != nil {
		return err
	}

	tracker := status.NewTracker()
	runner := harvest.NewRunner(launcher, stores.Posts, stores.Activity, tracker, nil, logger, harvest.NewRunnerConfig(cfg.Scraper, replay))

	go readCodes(tracker)
	printer := &statusPrinter{w: cmd.ErrOrStderr()}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		printer.watch(tracker, done)
	}()

	res, err := runner.Run(ctx)
	close(done)
	<-stopped
	// The run may finish between ticks; show its final status.
	printer.update(tracker.Snapshot())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d posts collected in %d scans (%d refreshes)\n",
		res.Outcome, res.Collected, res.Scans, res.Refreshes)
	return nil
}

// readCodes forwards each stdin line to the tracker as a verification code.
func readCodes(tracker *status.Tracker) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if code := strings.TrimSpace(scanner.Text()); code != "" {
			tracker.SubmitOTP(code)
		}
	}
}

// statusPrinter writes tracker changes to w, skipping repeats.
type statusPrinter struct {
	w    io.Writer
	last status.Snapshot
}

func (p *statusPrinter) watch(tracker *status.Tracker, done <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p.update(tracker.Snapshot())
		}
	}
}

// update prints snap when its status or message differs from the last one
// printed and reports whether it did.
func (p *statusPrinter) update(snap status.Snapshot) bool {
	if snap.Status == p.last.Status && snap.Message == p.last.Message {
		return false
	}
	p.last = snap
	fmt.Fprintf(p.w, "[%s] %s\n", snap.Status, snap.Message)
	if snap.Status == status.WaitingForOTP {
		fmt.Fprint(p.w, "verification code: ")
	}
	return true
}

func runGenerate(cmd *cobra.Command, req generation.Request) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	stores, closeStores, err := database.OpenStores(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	text, images := generation.NewProviders(cfg.Generation, logger)
	svc := generation.NewService(text, images, stores, nil, logger)

	res, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Content)
	if res.Image != "" {
		fmt.Fprintf(out, "\n[image: %d bytes as data URL]\n", len(res.Image))
	}
	return nil
}
