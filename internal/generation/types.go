// Package generation turns harvested posts into new post drafts and
// accompanying images using a text model and an optional image model.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned for a generation mode other than trend or remix.
var ErrInvalidMode = errors.New("invalid generation mode")

// Part is one element of an ordered multi-part prompt. It is either a
// TextPart or an ImagePart.
type Part interface {
	isPart()
}

// TextPart is a plain text prompt segment.
type TextPart struct {
	Text string
}

// ImagePart is raw image bytes attached to a prompt.
type ImagePart struct {
	Data     []byte
	MIMEType string
}

func (TextPart) isPart()  {}
func (ImagePart) isPart() {}

// Base64 returns the image bytes in standard base64.
func (p ImagePart) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURL returns the image encoded as a data URL.
func (p ImagePart) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", p.mimeType(), p.Base64())
}

func (p ImagePart) mimeType() string {
	if p.MIMEType == "" {
		return "image/png"
	}
	return p.MIMEType
}

// TextGenerator produces model text for a multi-part prompt.
type TextGenerator interface {
	Generate(ctx context.Context, parts []Part) (string, error)
}

// ImageGenerator renders an image for a text prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (ImagePart, error)
}

// DecodeDataURL decodes a data URL (or bare base64 payload) into an image
// part. The payload is everything after the first comma.
func DecodeDataURL(raw string) (ImagePart, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImagePart{}, errors.New("empty image")
	}

	mime := "image/jpeg"
	payload := raw
	if header, data, ok := strings.Cut(raw, ","); ok {
		payload = data
		if rest, found := strings.CutPrefix(header, "data:"); found {
			if m, _, _ := strings.Cut(rest, ";"); m != "" {
				mime = m
			}
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ImagePart{}, fmt.Errorf("decode image: %w", err)
	}
	return ImagePart{Data: data, MIMEType: mime}, nil
}
