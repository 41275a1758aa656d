package generation

import (
	"log/slog"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
)

// NewProviders builds the text and image generators selected by cfg. The
// image generator is nil when no image provider is configured.
func NewProviders(cfg config.GenerationConfig, logger *slog.Logger) (TextGenerator, ImageGenerator) {
	var text TextGenerator
	switch cfg.Provider {
	case "openai":
		text = NewOpenAIText(cfg.OpenAIKey, cfg.OpenAIModel, logger)
	case "anthropic":
		text = NewAnthropicText(cfg.AnthropicKey, cfg.AnthropicModel)
	default:
		logger.Warn("no text provider key configured, using mock generator")
		text = NewMockText()
	}
	text = NewRateLimited(text, cfg.RequestsPerMinute, DefaultRetryPolicy())

	var images ImageGenerator
	switch cfg.ImageProvider {
	case "openai":
		images = NewRetryingImages(NewOpenAIImages(cfg.OpenAIKey, cfg.OpenAIImageModel), DefaultRetryPolicy())
	case "huggingface":
		images = NewRetryingImages(NewHuggingFaceImages(cfg.HuggingFaceKey, cfg.HuggingFaceURL), DefaultRetryPolicy())
	}

	logger.Info("generation providers configured", "text", cfg.Provider, "image", cfg.ImageProvider)
	return text, images
}
