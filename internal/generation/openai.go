package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultOpenAIImageModel = openai.CreateImageModelDallE3
	openAITimeout           = 120 * time.Second
)

// OpenAIText generates post text with the chat completions API. Image parts
// are sent as inline data URLs in a multi-part user message.
type OpenAIText struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewOpenAIText creates a chat completion generator.
func NewOpenAIText(apiKey, model string, logger *slog.Logger) *OpenAIText {
	if model == "" {
		model = defaultOpenAIModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIText{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: 1024,
		logger:    logger,
	}
}

func (c *OpenAIText) Generate(ctx context.Context, parts []Part) (string, error) {
	apiCtx, cancel := context.WithTimeout(ctx, openAITimeout)
	defer cancel()

	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: chatParts(parts),
			},
		},
		MaxCompletionTokens: c.maxTokens,
	}
	if !isReasoningModel(c.model) {
		request.Temperature = 0.8
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(apiCtx, request)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	c.logger.Debug("openai completion",
		"model", c.model,
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return resp.Choices[0].Message.Content, nil
}

func chatParts(parts []Part) []openai.ChatMessagePart {
	out := make([]openai.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			out = append(out, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case ImagePart:
			out = append(out, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    p.DataURL(),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}
	return out
}

// isReasoningModel detects models that reject a temperature setting.
func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// OpenAIImages renders images with the images API.
type OpenAIImages struct {
	client *openai.Client
	model  string
}

func NewOpenAIImages(apiKey, model string) *OpenAIImages {
	if model == "" {
		model = defaultOpenAIImageModel
	}
	return &OpenAIImages{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIImages) Generate(ctx context.Context, prompt string) (ImagePart, error) {
	apiCtx, cancel := context.WithTimeout(ctx, openAITimeout)
	defer cancel()

	resp, err := c.client.CreateImage(apiCtx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return ImagePart{}, classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return ImagePart{}, errors.New("no image returned from OpenAI")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return ImagePart{}, fmt.Errorf("decode OpenAI image: %w", err)
	}
	return ImagePart{Data: data, MIMEType: "image/png"}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, fmt.Errorf("openai: %w", err))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, fmt.Errorf("openai: %w", err))
	}
	return fmt.Errorf("openai: %w", err)
}
