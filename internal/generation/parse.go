package generation

import "strings"

const (
	postMarker  = "[POST]"
	imageMarker = "[IMAGE]"
)

// ParseOutput splits model output into the post text and the image prompt.
// Output without an image marker is taken whole as the post and paired with
// DefaultImagePrompt.
func ParseOutput(raw string) (post, imagePrompt string) {
	before, after, found := strings.Cut(raw, imageMarker)
	if !found {
		return strings.TrimSpace(raw), DefaultImagePrompt
	}

	post = strings.TrimSpace(strings.ReplaceAll(before, postMarker, ""))
	// A second marker ends the prompt.
	after, _, _ = strings.Cut(after, imageMarker)
	imagePrompt = strings.TrimSpace(after)
	if imagePrompt == "" {
		imagePrompt = DefaultImagePrompt
	}
	return post, imagePrompt
}
