package generation

import (
	"context"
	"fmt"
	"strings"
)

// MockText returns canned output in the expected marker format. It is used
// when no provider key is configured.
type MockText struct{}

func NewMockText() *MockText {
	return &MockText{}
}

func (m *MockText) Generate(ctx context.Context, parts []Part) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	images := 0
	var prompt string
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			prompt += p.Text
		case ImagePart:
			images++
		}
	}

	subject := "the trend everyone is talking about"
	if i := strings.Index(prompt, "Write about: '"); i >= 0 {
		rest := prompt[i+len("Write about: '"):]
		if topic, _, ok := strings.Cut(rest, "'."); ok {
			subject = topic
		}
	}

	post := fmt.Sprintf("Three lessons I learned this week about %s.\n\n1. Start small.\n2. Ship often.\n3. Share what you learn.\n\nWhat would you add?", subject)
	if images > 0 {
		post += "\n\n(Inspired by the attached visual.)"
	}
	return fmt.Sprintf("[POST]\n%s\n[IMAGE]\nMinimal desk setup with a laptop showing growth charts, %s", post, DefaultImagePrompt), nil
}
