package generation

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/logging"
)

func TestOpenAITextSendsMultiPartMessage(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"[POST]hi[IMAGE]sky"}}],"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	gen := &OpenAIText{client: openai.NewClientWithConfig(cfg), model: "gpt-4o-mini", maxTokens: 100, logger: logging.Discard()}

	out, err := gen.Generate(t.Context(), []Part{
		TextPart{Text: "write something"},
		ImagePart{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "[POST]hi[IMAGE]sky", out)

	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	imageURL := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,AQID", imageURL["url"])
}

func TestOpenAITextMarksRateLimitRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit_error"}}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	gen := &OpenAIText{client: openai.NewClientWithConfig(cfg), model: "gpt-4o-mini", logger: logging.Discard()}

	_, err := gen.Generate(t.Context(), []Part{TextPart{Text: "x"}})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o3-mini"))
	assert.True(t, isReasoningModel("gpt-5"))
	assert.False(t, isReasoningModel("gpt-4o-mini"))
}

func TestAnthropicTextSendsImageBlock(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"[POST]a[IMAGE]b"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer srv.Close()

	gen := &AnthropicText{
		client:    anthropic.NewClient(option.WithAPIKey("k"), option.WithBaseURL(srv.URL+"/")),
		model:     "claude-test",
		maxTokens: 64,
	}

	out, err := gen.Generate(t.Context(), []Part{
		TextPart{Text: "remix"},
		ImagePart{Data: []byte{1, 2, 3}, MIMEType: "image/png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "[POST]a[IMAGE]b", out)

	content := body["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	source := content[1].(map[string]any)["source"].(map[string]any)
	assert.Equal(t, "image/png", source["media_type"])
	assert.Equal(t, "AQID", source["data"])
}

func TestHuggingFaceImagesReturnsBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a lighthouse", body["inputs"])
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8})
	}))
	defer srv.Close()

	img, err := NewHuggingFaceImages("hf-key", srv.URL).Generate(t.Context(), "a lighthouse")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, img.Data)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", img.DataURL())
}

func TestHuggingFaceImagesClassifiesErrors(t *testing.T) {
	status := http.StatusServiceUnavailable
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"error":"Model is currently loading"}`)
	}))
	defer srv.Close()

	gen := NewHuggingFaceImages("k", srv.URL)

	_, err := gen.Generate(t.Context(), "x")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	status = http.StatusUnauthorized
	_, err = gen.Generate(t.Context(), "x")
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestNewProvidersFallsBackToMock(t *testing.T) {
	text, images := NewProviders(config.GenerationConfig{Provider: "mock", ImageProvider: "none"}, logging.Discard())
	require.NotNil(t, text)
	assert.Nil(t, images)

	limited, ok := text.(*RateLimited)
	require.True(t, ok)
	assert.IsType(t, &MockText{}, limited.next)
}
