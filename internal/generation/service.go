package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/metrics"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

const (
	sessionContextLimit = 10
	globalContextLimit  = 3
)

// Request describes one generation call.
type Request struct {
	Mode             string  `json:"mode"`
	Topic            string  `json:"topic"`
	Tone             string  `json:"tone"`
	SessionTimestamp float64 `json:"session_timestamp"`
	ReferenceCaption string  `json:"reference_caption"`
	ReferenceImage   string  `json:"reference_image_base64"`
}

// Result is the generated post and, when rendered, its image as a data URL.
type Result struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

// Service builds prompts from stored posts, calls the generators and records
// the outcome in history.
type Service struct {
	text     TextGenerator
	images   ImageGenerator
	posts    storage.PostRepository
	history  storage.HistoryRepository
	activity storage.ActivityRepository
	metrics  *metrics.Pipeline
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a generation service. images may be nil, in which case
// results carry no image.
func NewService(text TextGenerator, images ImageGenerator, stores storage.Stores, m *metrics.Pipeline, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		text:     text,
		images:   images,
		posts:    stores.Posts,
		history:  stores.History,
		activity: stores.Activity,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate runs a trend or remix request. Provider failures are reported in
// the result content rather than as an error; an error is returned only for
// an invalid mode or a failed context lookup.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	start := s.now()
	if req.Tone == "" {
		req.Tone = DefaultTone
	}

	parts, err := s.buildParts(ctx, req)
	if err != nil {
		return Result{}, err
	}

	outcome := "success"
	var result Result

	raw, err := s.text.Generate(ctx, parts)
	if err != nil {
		s.logger.Error("text generation failed", "mode", req.Mode, "error", err)
		result.Content = "AI Error: " + err.Error()
		outcome = "text_error"
	} else {
		post, imagePrompt := ParseOutput(raw)
		result.Content = post
		if s.images != nil {
			img, err := s.images.Generate(ctx, imagePrompt)
			if err != nil {
				s.logger.Warn("image generation failed", "mode", req.Mode, "error", err)
				outcome = "image_error"
			} else {
				result.Image = img.DataURL()
			}
		}
	}

	elapsed := s.now().Sub(start)
	s.save(req, result)
	s.record(req, outcome, elapsed)
	s.metrics.GenerationFinished(req.Mode, outcome, elapsed)

	return result, nil
}

func (s *Service) buildParts(ctx context.Context, req Request) ([]Part, error) {
	switch req.Mode {
	case models.ModeTrend:
		examples, err := s.trendContext(ctx, req.SessionTimestamp)
		if err != nil {
			return nil, fmt.Errorf("load trend context: %w", err)
		}
		prompt := TrendPrompt(RenderContext(examples), TopicInstruction(req.Topic), req.Tone)
		return []Part{TextPart{Text: prompt}}, nil

	case models.ModeRemix:
		parts := []Part{TextPart{Text: RemixPrompt(req.ReferenceCaption, req.Topic, req.Tone)}}
		if req.ReferenceImage != "" {
			img, err := DecodeDataURL(req.ReferenceImage)
			if err != nil {
				s.logger.Warn("ignoring reference image", "error", err)
			} else {
				parts = append(parts, img)
			}
		}
		return parts, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
}

// trendContext returns the top posts of the harvest session around ts, or
// the global top posts when ts is unset.
func (s *Service) trendContext(ctx context.Context, ts float64) ([]models.Post, error) {
	if ts > 0 {
		from, to := storage.SessionWindow(ts)
		return s.posts.ListWindow(ctx, from, to, sessionContextLimit)
	}
	return s.posts.ListTop(ctx, globalContextLimit)
}

func (s *Service) save(req Request, result Result) {
	if s.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record := models.GeneratedRecord{
		Mode:      req.Mode,
		Topic:     req.Topic,
		Tone:      req.Tone,
		Content:   result.Content,
		Image:     result.Image,
		Timestamp: models.EpochSeconds(s.now()),
	}
	id, err := s.history.Insert(ctx, record)
	if err != nil {
		s.logger.Error("failed to save generated post", "error", err)
		return
	}
	s.logger.Info("generated post saved", "id", id, "mode", req.Mode)
}

func (s *Service) record(req Request, outcome string, elapsed time.Duration) {
	if s.activity == nil {
		return
	}

	durationMs := int(elapsed.Milliseconds())
	entry := models.ActivityLog{
		Timestamp:    s.now(),
		ActivityType: models.ActivityTypeGenerate,
		Message:      fmt.Sprintf("Generated %s post", req.Mode),
		Details: map[string]interface{}{
			"mode":    req.Mode,
			"topic":   req.Topic,
			"tone":    req.Tone,
			"outcome": outcome,
		},
		DurationMs: &durationMs,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.activity.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to record generation activity", "error", err)
	}
}
