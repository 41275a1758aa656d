package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-sonnet-latest"

// AnthropicText generates post text with the Messages API.
type AnthropicText struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropicText(apiKey, model string) *AnthropicText {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicText{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 2048,
	}
}

func (c *AnthropicText) Generate(ctx context.Context, parts []Part) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(contentBlocks(parts)...),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.StatusCode, fmt.Errorf("anthropic: %w", err))
		}
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text in anthropic response")
	}
	return b.String(), nil
}

func contentBlocks(parts []Part) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
		case ImagePart:
			blocks = append(blocks, anthropic.NewImageBlockBase64(p.mimeType(), p.Base64()))
		}
	}
	return blocks
}
