package generation

import (
	"fmt"
	"strings"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
)

const (
	// DefaultTone is used when a request names no tone.
	DefaultTone = "Professional"

	// DefaultImagePrompt is used when the model output carries no image prompt.
	DefaultImagePrompt = "Abstract tech background, cinematic lighting, 8k."

	contextSnippetLength = 300
)

// TopicInstruction renders the instruction line for a trend prompt.
func TopicInstruction(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "Detect viral topic."
	}
	return fmt.Sprintf("Write about: '%s'.", topic)
}

// RenderContext lists example posts, one per line, each cut to its first
// 300 characters.
func RenderContext(posts []models.Post) string {
	var b strings.Builder
	for i, post := range posts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(truncateRunes(post.Content, contextSnippetLength))
		b.WriteString("...")
	}
	return b.String()
}

// TrendPrompt asks for a new post modelled on the supplied examples.
func TrendPrompt(examples, topicInstruction, tone string) string {
	return fmt.Sprintf(`You are a ghostwriter for high-performing LinkedIn posts and the art director for their visuals.

Example posts that performed well:
%s

Tasks:
1. Write a LinkedIn post that follows the instruction below and borrows what made the examples work.
2. Write a prompt for an image generator describing a striking visual for the post.

Instruction: %s
Tone: %s

The image prompt must be specific and visual. Include: "Cinematic lighting, 8k resolution, photorealistic, shallow depth of field, vibrant colors, professional photography."

Reply in exactly this format:
[POST]
<post text>
[IMAGE]
<image prompt>`, examples, topicInstruction, tone)
}

// RemixPrompt asks for a rewrite of a reference post and, when an image is
// attached, a matching visual.
func RemixPrompt(caption, topic, tone string) string {
	if strings.TrimSpace(topic) == "" {
		topic = "the same subject"
	}
	return fmt.Sprintf(`You are a content creator remixing a post that already went viral.

You receive the original caption and possibly the original image.

Rewrite the caption for a new topic: "%s".
Keep its hook, sentence rhythm and structure. Tone: %s.

If an image is attached, study its composition and lighting and write a new image prompt with the same mood whose subject fits the new topic. Add: "Hyper-realistic, studio lighting, 4k, sharp focus, modern aesthetic."

Original caption: "%s"

Reply in exactly this format:
[POST]
<post text>
[IMAGE]
<image prompt>`, topic, tone, caption)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
