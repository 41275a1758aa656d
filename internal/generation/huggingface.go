package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHuggingFaceURL is the hosted SDXL inference endpoint.
const DefaultHuggingFaceURL = "https://router.huggingface.co/hf-inference/models/stabilityai/stable-diffusion-xl-base-1.0"

// HuggingFaceImages renders images through the Hugging Face inference API,
// which answers a JSON prompt with raw image bytes.
type HuggingFaceImages struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewHuggingFaceImages(apiKey, endpoint string) *HuggingFaceImages {
	if endpoint == "" {
		endpoint = DefaultHuggingFaceURL
	}
	return &HuggingFaceImages{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 90 * time.Second},
	}
}

func (h *HuggingFaceImages) Generate(ctx context.Context, prompt string) (ImagePart, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return ImagePart{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return ImagePart{}, err
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return ImagePart{}, NewRetryableError(fmt.Errorf("huggingface: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return ImagePart{}, fmt.Errorf("huggingface: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// 503 while the model is loading
		return ImagePart{}, classifyStatus(resp.StatusCode,
			fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, truncateRunes(string(data), 200)))
	}

	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return ImagePart{Data: data, MIMEType: mime}, nil
}
